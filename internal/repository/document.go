package repository

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"smartkanban/internal/model"
	"smartkanban/internal/storage"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	//go:embed schema/data.schema.json
	dataSchemaJSON string

	//go:embed schema/accounts.schema.json
	accountsSchemaJSON string

	dataSchema     = jsonschema.MustCompileString("data.schema.json", dataSchemaJSON)
	accountsSchema = jsonschema.MustCompileString("accounts.schema.json", accountsSchemaJSON)
)

// snapshot reads and writes one whole document of type T.
type snapshot[T any] struct {
	doc    storage.Document
	schema *jsonschema.Schema
	name   string
	logger *log.Logger
	// fill replaces nil slices so the document always serializes as arrays.
	fill func(*T)
}

// load returns the stored document. An empty document yields the zero
// value. A document that is not JSON at all is reset; one that is JSON but
// does not match the schema is reported and left alone.
func (s *snapshot[T]) load(ctx context.Context) (*T, error) {
	var v T
	body, err := s.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		s.fill(&v)
		return &v, nil
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		s.logger.Warn("unreadable snapshot, resetting", "document", s.name, "err", err)
		s.fill(&v)
		if err := s.save(ctx, &v); err != nil {
			return nil, err
		}
		return &v, nil
	}
	if err := s.schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%s snapshot does not match schema: %w", s.name, err)
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", s.name, err)
	}
	s.fill(&v)
	return &v, nil
}

func (s *snapshot[T]) save(ctx context.Context, v *T) error {
	s.fill(v)
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", s.name, err)
	}
	return s.doc.Save(ctx, body)
}

func fillData(d *model.Data) {
	if d.Projects == nil {
		d.Projects = []model.Project{}
	}
	if d.Tasks == nil {
		d.Tasks = []model.Task{}
	}
}

func fillAccounts(a *model.Accounts) {
	if a.Users == nil {
		a.Users = []model.User{}
	}
	if a.RefreshTokens == nil {
		a.RefreshTokens = []model.RefreshToken{}
	}
}
