package wasm

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pgavlin/wext/wasm/internal/readpos"
	"github.com/pgavlin/wext/wasm/leb128"
)

// sectionConstructors creates an empty section for each section ID the decoder understands.
var sectionConstructors = map[SectionID]func() Section{
	SectionIDCustom:    func() Section { return &SectionCustom{} },
	SectionIDType:      func() Section { return &SectionTypes{} },
	SectionIDImport:    func() Section { return &SectionImports{} },
	SectionIDFunction:  func() Section { return &SectionFunctions{} },
	SectionIDTable:     func() Section { return &SectionTables{} },
	SectionIDMemory:    func() Section { return &SectionMemories{} },
	SectionIDGlobal:    func() Section { return &SectionGlobals{} },
	SectionIDExport:    func() Section { return &SectionExports{} },
	SectionIDStart:     func() Section { return &SectionStartFunction{} },
	SectionIDElement:   func() Section { return &SectionElements{} },
	SectionIDDataCount: func() Section { return &SectionDataCount{} },
	SectionIDCode:      func() Section { return &SectionCode{} },
	SectionIDData:      func() Section { return &SectionData{} },
}

type sectionsReader struct {
	m         *Module
	lastOrder int // order of the previous known section
}

// readSections reads sections from r until the input is exhausted.
func (sr *sectionsReader) readSections(r *readpos.ReadPos) error {
	for {
		id, err := r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sr.readSection(r, SectionID(id)); err != nil {
			return err
		}
	}
}

func (sr *sectionsReader) newSection(id SectionID) (Section, error) {
	if id == SectionIDCustom {
		return sectionConstructors[id](), nil
	}

	newSection, ok := sectionConstructors[id]
	if !ok {
		if id == SectionIDTag {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedSection, id)
		}
		return nil, InvalidSectionIDError(id)
	}
	if id.order() <= sr.lastOrder {
		return nil, ErrSectionOrder
	}
	sr.lastOrder = id.order()
	return newSection(), nil
}

// readSection reads the size and payload of a section whose ID has already been consumed.
func (sr *sectionsReader) readSection(r *readpos.ReadPos, id SectionID) error {
	sec, err := sr.newSection(id)
	if err != nil {
		return err
	}

	size, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	Logger().Debug("reading section", zap.Stringer("id", id), zap.Uint32("size", size))

	raw := RawSection{ID: id, Start: r.CurPos}
	if raw.Bytes, err = readBytes(r, size); err != nil {
		return fmt.Errorf("reading %v section: %w", id, err)
	}
	raw.End = r.CurPos

	payload := bytes.NewReader(raw.Bytes)
	if err := sec.ReadPayload(payload); err != nil {
		return fmt.Errorf("reading %v section: %w", id, err)
	}
	if payload.Len() != 0 {
		return fmt.Errorf("wasm: %v section size mismatch", id)
	}
	*sec.GetRawSection() = raw

	if c, ok := sec.(*SectionCustom); ok {
		sr.m.Customs = append(sr.m.Customs, c)
	} else {
		sr.m.setTypedSection(sec)
	}
	sr.m.Sections = append(sr.m.Sections, sec)
	return nil
}
