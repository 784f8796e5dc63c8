package data

import (
	"context"
	"database/sql"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/startup_pulse/app/display/internal/usecase"
)

type userRepo struct {
	data *Data
	log  *log.Helper
}

func NewUserRepo(data *Data, logger log.Logger) usecase.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *userRepo) CreateUser(ctx context.Context, u *usecase.User) error {
	_, err := r.data.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2)`,
		u.Username, u.PasswordHash)
	return err
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*usecase.User, error) {
	u := &usecase.User{}
	err := r.data.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, persona FROM users WHERE username = $1`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Persona)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("USER_NOT_FOUND", "user not found")
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepo) UpdateUserPersona(ctx context.Context, id int, persona string) error {
	_, err := r.data.db.ExecContext(ctx,
		`UPDATE users SET persona = $1 WHERE id = $2`, persona, id)
	return err
}
