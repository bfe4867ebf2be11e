package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/xavierca1/ls-leads/internal/infra/logger"
)

// RunMigrations aplica as migrations pendentes do diretório; rodar de novo é no-op.
// Usa conexão própria (lib/pq, via driver do migrate), separada do pool da API.
func RunMigrations(databaseURL, migrationsPath string, log logger.Logger) error {
	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.WithField("error", srcErr.Error()).Warn("falha ao fechar fonte de migrations")
		}
		if dbErr != nil {
			log.WithField("error", dbErr.Error()).Warn("falha ao fechar conexão de migrations")
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("nenhuma migration pendente")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.WithField("version", version).Info("migrations aplicadas")
	return nil
}
