// SPDX-License-Identifier: Apache-2.0

package ged

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/jllopis/gedboard/pkg/config"
	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/telemetry"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns holds the CSV header of each record field.
type Columns struct {
	Date         string
	DocumentType string
	Project      string
	Issuer       string
	Lot          string
	Index        string
	Label        string
	AddedBy      string
}

// DefaultColumns returns the headers written by the GED export.
func DefaultColumns() Columns {
	return Columns{
		Date:         "Date dépôt GED",
		DocumentType: "TYPE DE DOCUMENT",
		Project:      "PROJET",
		Issuer:       "EMET",
		Lot:          "LOT",
		Index:        "INDICE",
		Label:        "Libellé du document",
		AddedBy:      "Ajouté par",
	}
}

// Options controls how an export is decoded.
type Options struct {
	Separator  rune
	Encoding   string // iso-8859-1, windows-1252 or utf-8
	DateLayout string
	Columns    Columns
}

// DefaultOptions returns the options matching a raw GED export.
func DefaultOptions() Options {
	return Options{
		Separator:  ';',
		Encoding:   "iso-8859-1",
		DateLayout: "2/1/2006",
		Columns:    DefaultColumns(),
	}
}

// OptionsFromConfig builds loader options from the csv and columns sections.
// Empty settings fall back to the defaults.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if r, size := utf8.DecodeRuneInString(cfg.CSV.Separator); size > 0 && r != utf8.RuneError {
		opts.Separator = r
	}
	if cfg.CSV.Encoding != "" {
		opts.Encoding = cfg.CSV.Encoding
	}
	if cfg.CSV.DateLayout != "" {
		opts.DateLayout = cfg.CSV.DateLayout
	}
	c := cfg.Columns
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&opts.Columns.Date, c.Date)
	set(&opts.Columns.DocumentType, c.DocumentType)
	set(&opts.Columns.Project, c.Project)
	set(&opts.Columns.Issuer, c.Issuer)
	set(&opts.Columns.Lot, c.Lot)
	set(&opts.Columns.Index, c.Index)
	set(&opts.Columns.Label, c.Label)
	set(&opts.Columns.AddedBy, c.AddedBy)
	return opts
}

func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	}
	return nil, errors.Newf(errors.CodeInvalidInput, "unsupported encoding %q", name)
}

// Load reads the export at path.
func Load(ctx context.Context, name, path string, opts Options) (*Dataset, error) {
	ctx, span := otel.Tracer("gedboard/ged").Start(ctx, "ged.Load")
	defer span.End()

	f, err := os.Open(path)
	if err != nil {
		code := errors.CodeInternal
		if stderrors.Is(err, os.ErrNotExist) {
			code = errors.CodeNotFound
		}
		ge := errors.New(code, "cannot open export", err).WithContext("path", path)
		span.RecordError(ge)
		span.SetStatus(codes.Error, ge.Message)
		return nil, ge
	}
	defer f.Close()

	ds, err := Parse(ctx, name, f, opts)
	if err != nil {
		if ge, ok := err.(*errors.GedError); ok {
			ge.WithContext("path", path)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}
	ds.Path = path
	span.SetAttributes(telemetry.LoadAttributes(name, path, len(ds.Records), ds.Skipped)...)
	return ds, nil
}

type columnIndex struct {
	date, docType, project, issuer, lot, index, label, addedBy int
}

// Parse decodes an export from r. Rows whose date cannot be parsed are
// kept with a zero date and counted in Skipped.
func Parse(ctx context.Context, name string, r io.Reader, opts Options) (*Dataset, error) {
	if opts.Separator == 0 {
		opts.Separator = ';'
	}
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultOptions().DateLayout
	}

	br := bufio.NewReader(r)
	enc, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}
	// A BOM means the file is UTF-8 whatever the configured charset.
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
		enc = unicode.UTF8
	}

	cr := csv.NewReader(enc.NewDecoder().Reader(br))
	cr.Comma = opts.Separator
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.CodeParse, "export is empty", nil).WithContext("project", name)
	}
	if err != nil {
		return nil, errors.New(errors.CodeParse, "cannot read header", err).WithContext("project", name)
	}

	idx, herr := mapHeader(header, opts.Columns)
	if herr != nil {
		return nil, herr.WithContext("project", name)
	}

	ds := &Dataset{Name: name, LoadedAt: time.Now()}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New(errors.CodeParse, "malformed row", err).WithContext("project", name)
		}
		line, _ := cr.FieldPos(0)
		rec := Record{
			DocumentType: cell(row, idx.docType),
			Project:      cell(row, idx.project),
			Issuer:       cell(row, idx.issuer),
			Lot:          cell(row, idx.lot),
			Index:        cell(row, idx.index),
			Label:        cell(row, idx.label),
			AddedBy:      cell(row, idx.addedBy),
			Line:         line,
		}
		if d, ok := parseDate(cell(row, idx.date), opts.DateLayout); ok {
			rec.DepositDate = d
		} else {
			ds.Skipped++
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func mapHeader(header []string, cols Columns) (columnIndex, *errors.GedError) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	find := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}

	idx := columnIndex{
		date:    find(cols.Date),
		docType: find(cols.DocumentType),
		project: find(cols.Project),
		issuer:  find(cols.Issuer),
		lot:     find(cols.Lot),
		index:   find(cols.Index),
		label:   find(cols.Label),
		addedBy: find(cols.AddedBy),
	}

	var missing []string
	for _, req := range []struct {
		name string
		at   int
	}{
		{cols.Date, idx.date},
		{cols.DocumentType, idx.docType},
		{cols.Lot, idx.lot},
		{cols.Index, idx.index},
	} {
		if req.at < 0 {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return idx, errors.Newf(errors.CodeInvalidInput, "missing required columns: %s", strings.Join(missing, ", ")).
			WithContext("missing", missing)
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseDate parses v with layout. A trailing time of day is ignored.
func parseDate(v, layout string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(layout, v); err == nil {
		return t, true
	}
	if i := strings.IndexByte(v, ' '); i > 0 {
		if t, err := time.Parse(layout, v[:i]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
