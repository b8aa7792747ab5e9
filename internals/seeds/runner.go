package seeds

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodaudit_backend/internals/seeds/checklists"
)

const DefaultChecklistFile = "internals/seeds/checklists/data_checklists.json"

func RunAllSeeds(ctx context.Context, db *gorm.DB, log *zap.Logger, checklistFile string) error {
	if checklistFile == "" {
		checklistFile = DefaultChecklistFile
	}
	//* Checklists
	_, err := checklists.SeedChecklistsFromJSON(ctx, db, log, checklistFile)
	return err
}
