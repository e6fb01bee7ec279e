package retrieve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive persists fetched documents under a content-addressed layout:
//
//	<root>/<record_id>/article[_<index>][_<method>].html
//	<root>/<record_id>/article[_<index>][_<method>].txt
//	<root>/<record_id>/metadata.json
//
// Append-mostly: writers for distinct record IDs never conflict. Re-runs
// detect existing entries and skip unless forced.
type Archive struct {
	root string
}

// NewArchive creates an archive rooted at dir.
func NewArchive(dir string) *Archive {
	return &Archive{root: dir}
}

// SourceMeta records fetch provenance for one archived source.
type SourceMeta struct {
	Index      int       `json:"index"`
	URL        string    `json:"url"`
	FinalURL   string    `json:"final_url,omitempty"`
	Method     string    `json:"method"`
	StatusCode int       `json:"status_code"`
	SHA256     string    `json:"sha256"`
	FetchedAt  time.Time `json:"fetched_at"`
	TextFile   string    `json:"text_file"`
	HTMLFile   string    `json:"html_file"`
}

type recordMeta struct {
	RecordID string       `json:"record_id"`
	Sources  []SourceMeta `json:"sources"`
}

// Has reports whether a source at the given index is already archived.
func (a *Archive) Has(recordID string, index int) bool {
	meta, err := a.readMeta(recordID)
	if err != nil {
		return false
	}
	for _, s := range meta.Sources {
		if s.Index == index {
			return true
		}
	}
	return false
}

// Text returns the archived plain text for a source, if present.
func (a *Archive) Text(recordID string, index int) (string, bool) {
	meta, err := a.readMeta(recordID)
	if err != nil {
		return "", false
	}
	for _, s := range meta.Sources {
		if s.Index == index {
			data, err := os.ReadFile(filepath.Join(a.dir(recordID), s.TextFile))
			if err != nil {
				return "", false
			}
			return string(data), true
		}
	}
	return "", false
}

// Put stores a fetched document and updates metadata.json. An existing
// entry at the same index is replaced (forced re-fetch).
func (a *Archive) Put(recordID string, index int, doc *Document) error {
	dir := a.dir(recordID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	base := "article"
	if index > 0 {
		base = fmt.Sprintf("article_%d", index)
	}
	base = fmt.Sprintf("%s_%s", base, doc.Method)

	htmlFile := base + ".html"
	txtFile := base + ".txt"
	if err := os.WriteFile(filepath.Join(dir, htmlFile), []byte(doc.HTML), 0644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, txtFile), []byte(doc.Text), 0644); err != nil {
		return fmt.Errorf("write text: %w", err)
	}

	meta, err := a.readMeta(recordID)
	if err != nil {
		meta = &recordMeta{RecordID: recordID}
	}
	entry := SourceMeta{
		Index:      index,
		URL:        doc.URL,
		FinalURL:   doc.FinalURL,
		Method:     doc.Method,
		StatusCode: doc.StatusCode,
		SHA256:     doc.SHA256,
		FetchedAt:  doc.FetchedAt,
		TextFile:   txtFile,
		HTMLFile:   htmlFile,
	}
	replaced := false
	for i, s := range meta.Sources {
		if s.Index == index {
			meta.Sources[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		meta.Sources = append(meta.Sources, entry)
	}

	return a.writeMeta(recordID, meta)
}

func (a *Archive) dir(recordID string) string {
	return filepath.Join(a.root, recordID)
}

func (a *Archive) metaPath(recordID string) string {
	return filepath.Join(a.dir(recordID), "metadata.json")
}

func (a *Archive) readMeta(recordID string) (*recordMeta, error) {
	data, err := os.ReadFile(a.metaPath(recordID))
	if err != nil {
		return nil, err
	}
	var meta recordMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &meta, nil
}

func (a *Archive) writeMeta(recordID string, meta *recordMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(a.metaPath(recordID), data, 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}
