// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refs

import (
	"github.com/pdiddy/citekit/pkg/types"
)

// ToReference converts a CSL item to a Reference. The container title
// becomes an embedded parent for chapter and serial kinds.
func ToReference(item CSLItem) *types.Reference {
	r := &types.Reference{
		ID:              item.ID,
		Type:            item.Type,
		Author:          toNames(item.Author),
		Editor:          toNames(item.Editor),
		Translator:      toNames(item.Translator),
		Issued:          item.Issued.EDTF(),
		Accessed:        item.Accessed.EDTF(),
		OriginalDate:    item.OriginalDate.EDTF(),
		Volume:          string(item.Volume),
		Issue:           string(item.Issue),
		Pages:           string(item.Page),
		Edition:         string(item.Edition),
		Number:          string(item.Number),
		ChapterNumber:   string(item.ChapterNumber),
		NumberOfPages:   string(item.NumberOfPages),
		CollectionTitle: item.CollectionTitle,
		PublisherPlace:  item.PublisherPlace,
		DOI:             item.DOI,
		URL:             item.URL,
		ISBN:            item.ISBN,
		ISSN:            item.ISSN,
		Genre:           item.Genre,
		Medium:          item.Medium,
		Note:            item.Note,
		Archive:         item.Archive,
		Authority:       item.Authority,
		Jurisdiction:    item.Jurisdiction,
		Version:         item.Version,
		Language:        item.Language,
	}
	if item.Title != "" {
		r.Title = &types.Title{Main: item.Title, Short: item.TitleShort}
	}
	if item.Publisher != "" {
		r.Publisher = types.Contributor{{Literal: item.Publisher}}
	}
	switch {
	case types.IsSerialKind(item.Type):
		r.Class = types.ClassSerialComponent
	case types.IsChapterKind(item.Type):
		r.Class = types.ClassCollectionComponent
	case item.Type == "legal_case":
		r.Class = types.ClassLegalCase
	case item.Type == "legislation":
		r.Class = types.ClassStatute
	case item.Type == "standard":
		r.Class = types.ClassStandard
	case item.Type == "patent":
		r.Class = types.ClassPatent
	default:
		r.Class = types.ClassMonograph
	}
	if item.ContainerTitle != "" && (r.Class == types.ClassSerialComponent || r.Class == types.ClassCollectionComponent) {
		r.Parent = &types.Parent{Reference: &types.Reference{
			Title: &types.Title{Main: item.ContainerTitle},
		}}
	}
	return r
}

// FromReference converts a Reference to a CSL item. A parent referenced
// by id is resolved through bib.
func FromReference(r *types.Reference, bib *types.Bibliography) CSLItem {
	item := CSLItem{
		ID:              r.ID,
		Type:            r.Kind(),
		Title:           r.Title.Long(),
		Author:          fromNames(r.Author),
		Editor:          fromNames(r.Editor),
		Translator:      fromNames(r.Translator),
		Issued:          dateFromEDTF(r.Issued),
		Accessed:        dateFromEDTF(r.Accessed),
		OriginalDate:    dateFromEDTF(r.OriginalDate),
		Publisher:       r.Publisher.Literal("; "),
		PublisherPlace:  r.PublisherPlace,
		Volume:          Text(r.Volume),
		Issue:           Text(r.Issue),
		Page:            Text(r.Pages),
		Edition:         Text(r.Edition),
		Number:          Text(r.Number),
		ChapterNumber:   Text(r.ChapterNumber),
		NumberOfPages:   Text(r.NumberOfPages),
		CollectionTitle: r.CollectionTitle,
		DOI:             r.DOI,
		URL:             r.URL,
		ISBN:            r.ISBN,
		ISSN:            r.ISSN,
		Genre:           r.Genre,
		Medium:          r.Medium,
		Note:            r.Note,
		Archive:         r.Archive,
		Authority:       r.Authority,
		Jurisdiction:    r.Jurisdiction,
		Version:         r.Version,
		Language:        r.Language,
	}
	if r.Title != nil && r.Title.Short != "" {
		item.TitleShort = r.Title.Short
	}
	if p := bib.Parent(r); p != nil {
		item.ContainerTitle = p.Title.Long()
	}
	return item
}
