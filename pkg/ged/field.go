// SPDX-License-Identifier: Apache-2.0

package ged

import (
	"strings"

	"github.com/jllopis/gedboard/pkg/errors"
)

// Field names a categorical column of a GED record.
type Field int

const (
	FieldLot Field = iota + 1
	FieldDocumentType
	FieldIssuer
	FieldIndex
	FieldProject
	FieldLabel
	FieldAddedBy
)

var fieldNames = map[Field][2]string{
	FieldLot:          {"lot", "LOT"},
	FieldDocumentType: {"type", "TYPE DE DOCUMENT"},
	FieldIssuer:       {"issuer", "EMET"},
	FieldIndex:        {"index", "INDICE"},
	FieldProject:      {"project", "PROJET"},
	FieldLabel:        {"label", "Libellé du document"},
	FieldAddedBy:      {"added_by", "Ajouté par"},
}

// Fields lists every categorical field in display order.
func Fields() []Field {
	return []Field{FieldProject, FieldIssuer, FieldDocumentType, FieldLot, FieldIndex, FieldLabel, FieldAddedBy}
}

// String returns the short name (lot, type, issuer...).
func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n[0]
	}
	return "unknown"
}

// Header returns the default CSV header of the field, used as a column title.
func (f Field) Header() string {
	if n, ok := fieldNames[f]; ok {
		return n[1]
	}
	return ""
}

// ParseField accepts short names, CSV headers and a few aliases, case-insensitively.
func ParseField(s string) (Field, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for f, n := range fieldNames {
		if v == n[0] || v == strings.ToLower(n[1]) {
			return f, nil
		}
	}
	switch v {
	case "document_type", "doctype", "type_document":
		return FieldDocumentType, nil
	case "emet", "emitter":
		return FieldIssuer, nil
	case "indice":
		return FieldIndex, nil
	case "projet":
		return FieldProject, nil
	case "libelle", "libellé":
		return FieldLabel, nil
	case "added-by", "addedby", "ajoute_par":
		return FieldAddedBy, nil
	}
	return 0, errors.Newf(errors.CodeInvalidInput, "unknown field %q", s).
		WithContext("field", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(b []byte) error {
	parsed, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
