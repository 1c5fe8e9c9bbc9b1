package framework

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// AttachmentKind describes how an attachment's content should be interpreted by a report viewer.
type AttachmentKind string

const (
	AttachmentText AttachmentKind = "text"
	AttachmentJSON AttachmentKind = "json"
)

// Attachment is a diagnostic artifact associated with a test, such as a reproduction of an
// HTTP request or the body of a response.
type Attachment struct {
	Name      string
	Kind      AttachmentKind
	Extension string
	Data      []byte
}

// TextAttachment is a shortcut for creating a plain-text attachment.
func TextAttachment(name string, data []byte) Attachment {
	return Attachment{Name: name, Kind: AttachmentText, Extension: "txt", Data: data}
}

// JSONAttachment is a shortcut for creating a JSON attachment.
func JSONAttachment(name string, data []byte) Attachment {
	return Attachment{Name: name, Kind: AttachmentJSON, Extension: "json", Data: data}
}

// ReportSink receives attachments as tests produce them. It is a pure side channel: nothing
// that a sink does can affect the outcome of a test.
type ReportSink interface {
	Attach(id TestID, a Attachment) error
}

type nullReportSink struct{}

func (n nullReportSink) Attach(TestID, Attachment) error { return nil }

// NullReportSink returns a ReportSink that discards everything.
func NullReportSink() ReportSink { return nullReportSink{} }

// CapturedAttachment is an attachment recorded by CapturingReportSink.
type CapturedAttachment struct {
	TestID     TestID
	Attachment Attachment
}

// CapturingReportSink keeps all attachments in memory.
type CapturingReportSink struct {
	attachments []CapturedAttachment
	lock        sync.Mutex
}

func (s *CapturingReportSink) Attach(id TestID, a Attachment) error {
	s.lock.Lock()
	s.attachments = append(s.attachments, CapturedAttachment{TestID: id, Attachment: a})
	s.lock.Unlock()
	return nil
}

func (s *CapturingReportSink) Attachments() []CapturedAttachment {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]CapturedAttachment(nil), s.attachments...)
}

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DirReportSink writes each attachment to a file under a base directory. Each test gets its
// own subdirectory derived from its TestID, and files are numbered in the order they were
// attached, for instance:
//
//	<dir>/login/successful_login/01-Curl.txt
//	<dir>/login/successful_login/02-Response_Json.json
type DirReportSink struct {
	dir      string
	counters map[string]int
	lock     sync.Mutex
}

// NewDirReportSink creates a DirReportSink, creating the base directory if necessary.
func NewDirReportSink(dir string) (*DirReportSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create report directory: %w", err)
	}
	return &DirReportSink{dir: dir, counters: make(map[string]int)}, nil
}

func (s *DirReportSink) Attach(id TestID, a Attachment) error {
	testDir := s.dir
	for _, p := range id.Path {
		testDir = filepath.Join(testDir, sanitizePathElement(p))
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.MkdirAll(testDir, 0755); err != nil {
		return err
	}
	s.counters[testDir]++
	ext := a.Extension
	if ext == "" {
		ext = "txt"
	}
	fileName := fmt.Sprintf("%02d-%s.%s", s.counters[testDir], sanitizePathElement(a.Name), ext)
	return os.WriteFile(filepath.Join(testDir, fileName), a.Data, 0644)
}

func sanitizePathElement(s string) string {
	s = strings.Trim(unsafePathChars.ReplaceAllString(s, "_"), "_")
	if s == "" {
		return "_"
	}
	return s
}
