package checklists

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodaudit_backend/internals/features/audits/model"
)

type ItemSeed struct {
	Reference   string `json:"reference"`
	Coefficient int    `json:"coefficient"`
}

type SectionSeed struct {
	Name  string     `json:"name"`
	Items []ItemSeed `json:"items"`
}

type SchemaSeed struct {
	Name     string        `json:"name"`
	Sections []SectionSeed `json:"sections"`
}

// SeedChecklistsFromJSON loads checklist schemas from filePath. Schemas are
// matched by name; an existing one is left untouched.
func SeedChecklistsFromJSON(ctx context.Context, db *gorm.DB, log *zap.Logger, filePath string) (int, error) {
	log.Info("reading checklist seed", zap.String("file", filePath))

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var seeds []SchemaSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}

	created := 0
	for _, seed := range seeds {
		name := strings.TrimSpace(seed.Name)
		if name == "" {
			return created, errors.New("schema without a name")
		}

		var existing model.SchemaModel
		err := db.WithContext(ctx).Where("schema_name = ?", name).Take(&existing).Error
		if err == nil {
			log.Info("schema already present, skipping", zap.String("schema", name))
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return insertSchema(tx, name, seed.Sections)
		}); err != nil {
			return created, fmt.Errorf("seed schema %q: %w", name, err)
		}
		created++
		log.Info("schema seeded", zap.String("schema", name), zap.Int("sections", len(seed.Sections)))
	}
	return created, nil
}

func insertSchema(tx *gorm.DB, name string, sections []SectionSeed) error {
	schema := model.SchemaModel{SchemaName: name}
	if err := tx.Create(&schema).Error; err != nil {
		return err
	}
	for i, sec := range sections {
		row := model.SchemaSectionModel{
			SchemaSectionSchemaID: schema.SchemaID,
			SchemaSectionName:     strings.TrimSpace(sec.Name),
			SchemaSectionOrder:    i + 1,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for j, it := range sec.Items {
			if it.Coefficient <= 0 {
				return fmt.Errorf("item %q in section %q: coefficient must be positive", it.Reference, sec.Name)
			}
			if err := tx.Create(&model.TemplateItemModel{
				TemplateItemSchemaID:    schema.SchemaID,
				TemplateItemSectionID:   row.SchemaSectionID,
				TemplateItemReference:   it.Reference,
				TemplateItemCoefficient: it.Coefficient,
				TemplateItemOrder:       j + 1,
			}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
