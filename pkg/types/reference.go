// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for citekit: the
// Reference model, Locale tables, the declarative Template IR, Style
// options, and Citation inputs. It imports nothing internal so that the
// compiler, the renderer, and the loaders can all depend on it.
package types

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// WorkClass discriminates the Reference variants.
type WorkClass string

const (
	ClassMonograph           WorkClass = "monograph"
	ClassCollectionComponent WorkClass = "collection-component"
	ClassSerialComponent     WorkClass = "serial-component"
	ClassCollection          WorkClass = "collection"
	ClassLegalCase           WorkClass = "legal-case"
	ClassStatute             WorkClass = "statute"
	ClassStandard            WorkClass = "standard"
	ClassPatent              WorkClass = "patent"
)

// defaultKinds maps a work class to the item kind used when a Reference
// carries no explicit type.
var defaultKinds = map[WorkClass]string{
	ClassMonograph:           "book",
	ClassCollectionComponent: "chapter",
	ClassSerialComponent:     "article-journal",
	ClassCollection:          "book",
	ClassLegalCase:           "legal_case",
	ClassStatute:             "legislation",
	ClassStandard:            "standard",
	ClassPatent:              "patent",
}

// chapterKinds are item kinds whose parent is a monograph.
var chapterKinds = map[string]bool{
	"chapter":            true,
	"paper-conference":   true,
	"entry-encyclopedia": true,
	"entry-dictionary":   true,
	"entry":              true,
}

// serialKinds are item kinds whose parent is a serial.
var serialKinds = map[string]bool{
	"article-journal":   true,
	"article-magazine":  true,
	"article-newspaper": true,
	"article":           true,
	"post":              true,
	"post-weblog":       true,
	"review":            true,
	"review-book":       true,
}

// IsChapterKind reports whether kind names a work published inside a monograph.
func IsChapterKind(kind string) bool { return chapterKinds[kind] }

// IsSerialKind reports whether kind names a work published inside a serial.
func IsSerialKind(kind string) bool { return serialKinds[kind] }

// Reference is one bibliographic record. Class selects the variant; the
// kind-specific fields are only meaningful for the classes that use them.
type Reference struct {
	ID    string    `json:"id,omitempty" yaml:"id,omitempty"`
	Class WorkClass `json:"class,omitempty" yaml:"class,omitempty"`

	// Type is the item kind (e.g. "book", "article-journal"). When empty
	// the kind is derived from Class.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Title      *Title      `json:"title,omitempty" yaml:"title,omitempty"`
	Author     Contributor `json:"author,omitempty" yaml:"author,omitempty"`
	Editor     Contributor `json:"editor,omitempty" yaml:"editor,omitempty"`
	Translator Contributor `json:"translator,omitempty" yaml:"translator,omitempty"`
	Publisher  Contributor `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	Issued       EDTF `json:"issued,omitempty" yaml:"issued,omitempty"`
	Accessed     EDTF `json:"accessed,omitempty" yaml:"accessed,omitempty"`
	OriginalDate EDTF `json:"original-date,omitempty" yaml:"original-date,omitempty"`

	// Parent is the containing work of a component class, either embedded
	// or referenced by id.
	Parent *Parent `json:"parent,omitempty" yaml:"parent,omitempty"`

	Volume        string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue         string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages         string `json:"pages,omitempty" yaml:"pages,omitempty"`
	Edition       string `json:"edition,omitempty" yaml:"edition,omitempty"`
	Number        string `json:"number,omitempty" yaml:"number,omitempty"`
	ChapterNumber string `json:"chapter-number,omitempty" yaml:"chapter-number,omitempty"`
	NumberOfPages string `json:"number-of-pages,omitempty" yaml:"number-of-pages,omitempty"`

	CollectionTitle string `json:"collection-title,omitempty" yaml:"collection-title,omitempty"`
	PublisherPlace  string `json:"publisher-place,omitempty" yaml:"publisher-place,omitempty"`
	DOI             string `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL             string `json:"url,omitempty" yaml:"url,omitempty"`
	ISBN            string `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	ISSN            string `json:"issn,omitempty" yaml:"issn,omitempty"`
	Genre           string `json:"genre,omitempty" yaml:"genre,omitempty"`
	Medium          string `json:"medium,omitempty" yaml:"medium,omitempty"`
	Note            string `json:"note,omitempty" yaml:"note,omitempty"`
	Archive         string `json:"archive,omitempty" yaml:"archive,omitempty"`
	Authority       string `json:"authority,omitempty" yaml:"authority,omitempty"`
	Jurisdiction    string `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"`
	Version         string `json:"version,omitempty" yaml:"version,omitempty"`
	Language        string `json:"language,omitempty" yaml:"language,omitempty"`
}

// Kind returns the item kind used for per-kind overrides and type templates.
func (r *Reference) Kind() string {
	if r.Type != "" {
		return r.Type
	}
	if k, ok := defaultKinds[r.Class]; ok {
		return k
	}
	return "book"
}

// IsSerialComponent reports whether the reference is published in a serial.
func (r *Reference) IsSerialComponent() bool {
	if r.Class == ClassSerialComponent {
		return true
	}
	return r.Class == "" && IsSerialKind(r.Type)
}

// IsCollectionComponent reports whether the reference is published in a monograph.
func (r *Reference) IsCollectionComponent() bool {
	if r.Class == ClassCollectionComponent {
		return true
	}
	return r.Class == "" && IsChapterKind(r.Type)
}

// Contributor returns the names for role, or nil.
func (r *Reference) Contributor(role ContributorRole) Contributor {
	switch role {
	case RoleAuthor:
		return r.Author
	case RoleEditor:
		return r.Editor
	case RoleTranslator:
		return r.Translator
	case RolePublisher:
		return r.Publisher
	}
	return nil
}

// Date returns the raw date string for v.
func (r *Reference) Date(v DateVariable) EDTF {
	switch v {
	case DateIssued:
		return r.Issued
	case DateAccessed:
		return r.Accessed
	case DateOriginal:
		return r.OriginalDate
	}
	return ""
}

// NumberValue returns the value of a reference-level number variable.
// Citation numbers and locators are not stored on the reference.
func (r *Reference) NumberValue(v NumberVariable) string {
	switch v {
	case NumberVolume:
		return r.Volume
	case NumberIssue:
		return r.Issue
	case NumberPages:
		return r.Pages
	case NumberEdition:
		return r.Edition
	case NumberNumber:
		return r.Number
	case NumberChapter:
		return r.ChapterNumber
	case NumberOfPages:
		return r.NumberOfPages
	}
	return ""
}

// Variable returns the value of a simple string variable. Publisher
// resolves to the publisher names joined with "; ".
func (r *Reference) Variable(v SimpleVariable) string {
	switch v {
	case VarDOI:
		return r.DOI
	case VarURL:
		return r.URL
	case VarISBN:
		return r.ISBN
	case VarISSN:
		return r.ISSN
	case VarPublisher:
		return r.Publisher.Literal("; ")
	case VarPublisherPlace:
		return r.PublisherPlace
	case VarGenre:
		return r.Genre
	case VarMedium:
		return r.Medium
	case VarNote:
		return r.Note
	case VarArchive:
		return r.Archive
	case VarAuthority:
		return r.Authority
	case VarJurisdiction:
		return r.Jurisdiction
	case VarVersion:
		return r.Version
	case VarLanguage:
		return r.Language
	case VarCollectionTitle:
		return r.CollectionTitle
	}
	return ""
}

// Parent is the containing work of a component reference: either an
// embedded Reference or the id of another bibliography entry.
type Parent struct {
	ID        string
	Reference *Reference
}

// UnmarshalYAML accepts a scalar id or an embedded reference mapping.
func (p *Parent) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		p.ID = node.Value
		return nil
	case yaml.MappingNode:
		var ref Reference
		if err := node.Decode(&ref); err != nil {
			return fmt.Errorf("decoding parent: %w", err)
		}
		p.Reference = &ref
		return nil
	}
	return fmt.Errorf("line %d: parent must be an id or a mapping", node.Line)
}

// MarshalYAML writes the id form when the parent is a reference by id.
func (p Parent) MarshalYAML() (any, error) {
	if p.Reference != nil {
		return p.Reference, nil
	}
	return p.ID, nil
}
