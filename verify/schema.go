package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/apitests/reqres-contract-tests/apiclient"

	"github.com/stretchr/testify/require"
)

// LoadSchema reads and parses a JSON Schema document. Schemas are not cached: each call reads
// the file again.
func LoadSchema(path string) (*jsonschema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read schema: %w", err)
	}
	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(data, schema); err != nil {
		return nil, fmt.Errorf("could not parse schema %s: %w", path, err)
	}
	return schema, nil
}

// ValidateSchema checks a JSON document against a schema file. A non-nil error means that
// validation could not be attempted at all (the schema could not be loaded, or the document
// is not JSON); a non-empty list of KeyErrors means the document does not conform.
func ValidateSchema(ctx context.Context, schemaPath string, document []byte) ([]jsonschema.KeyError, error) {
	schema, err := LoadSchema(schemaPath)
	if err != nil {
		return nil, err
	}
	if !json.Valid(document) {
		return nil, fmt.Errorf("document is not valid JSON")
	}
	keyErrors, err := schema.ValidateBytes(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}
	return keyErrors, nil
}

// Schema checks that the JSON body conforms to the JSON Schema in the specified file.
func Schema(t TestingT, resp *apiclient.Response, schemaPath string) {
	helper(t)
	step(t, "Verify response schema (%s)", schemaPath)
	keyErrors, err := ValidateSchema(context.Background(), schemaPath, resp.Body)
	require.NoError(t, err, "could not validate schema; response was %s", resp)
	if len(keyErrors) > 0 {
		lines := make([]string, 0, len(keyErrors))
		for _, e := range keyErrors {
			lines = append(lines, "  "+e.Error())
		}
		require.Fail(t, "response does not match schema",
			"%s:\n%s", schemaPath, strings.Join(lines, "\n"))
	}
}
