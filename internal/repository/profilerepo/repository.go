package profilerepo

import (
	"context"
	"database/sql"
	"time"

	"stockmove/internal/domain"
	apperror "stockmove/internal/errors"
	"stockmove/internal/pkg/logger"
)

// ProfileRepository dá acesso aos perfis de armazém vinculados aos usuários.
type ProfileRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewProfileRepository cria e retorna uma nova instância do Repositório de Perfis.
func NewProfileRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *ProfileRepository {
	return &ProfileRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindActiveByUser retorna todos os perfis ATIVOS de um usuário, ordenados
// pelo nome de exibição. Lista vazia é um resultado válido (não é erro).
func (r *ProfileRepository) FindActiveByUser(ctx context.Context, userID string) ([]domain.UserProfile, error) {
	r.logger.Debug("Buscando perfis ativos do usuário no repositório.", map[string]interface{}{"user_id": userID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, user_id, username, active, created_at
        FROM user_profiles
        WHERE user_id = $1 AND active = TRUE
        ORDER BY username`

	rows, err := r.DB.QueryContext(ctxTimeout, query, userID)
	if err != nil {
		r.logger.Error("Falha ao buscar perfis do usuário no DB.", err)
		return nil, apperror.NewDBError("Falha ao buscar perfis do usuário", err)
	}
	defer rows.Close()

	var profiles []domain.UserProfile
	for rows.Next() {
		var p domain.UserProfile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.Active, &p.CreatedAt); err != nil {
			r.logger.Error("Falha ao mapear perfil do usuário.", err)
			return nil, apperror.NewDBError("Falha ao mapear perfil do usuário", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Falha ao iterar perfis do usuário.", err)
		return nil, apperror.NewDBError("Falha ao iterar perfis do usuário", err)
	}

	r.logger.Debug("Perfis ativos carregados.", map[string]interface{}{"user_id": userID, "count": len(profiles)})
	return profiles, nil
}
