package pgdb

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/user"
)

type userRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Username     string      `db:"username"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	Department   null.String `db:"department"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (r userRow) model() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		Role:         r.Role,
		Department:   r.Department.String,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
		LastLogin:    r.LastLogin.Time,
	}
	usr.SetActive(r.IsActive)
	return usr
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	var args []interface{}
	conds := []string{"(username = " + arg(&args, username) + " OR email = " + arg(&args, email) + ")"}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		conds = append(conds, "id NOT IN ("+inArgs(&args, ids)+")")
	}

	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT username, email FROM "user"`+where(conds)+" LIMIT 1", args...)
	switch err {
	case nil:
		if row.Username == username {
			return user.ErrUsernameExists
		}
		return user.ErrEmailExists
	case sql.ErrNoRows:
		return nil
	}
	return errors.Wrap(err, "checking username uniqueness")
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO "user" (id, name, username, email, role, department, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.Role, null.NewString(usr.Department, usr.Department != ""),
		usr.Active(), usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	if filter == nil {
		filter = new(user.QueryFilter)
	}

	var args []interface{}
	var conds []string
	if filter.Search != "" {
		ph := arg(&args, "%"+filter.Search+"%")
		conds = append(conds, "(name ILIKE "+ph+" OR username ILIKE "+ph+" OR email ILIKE "+ph+")")
	}
	if len(filter.Roles) > 0 {
		conds = append(conds, "role IN ("+inArgs(&args, filter.Roles)+")")
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(&args, *filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(&args, filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= "+arg(&args, filter.CreatedTo))
	}

	allowed := map[string]bool{"name": true, "username": true, "created_at": true}
	q := `SELECT * FROM "user"` + where(conds) + orderBy(ordering, allowed, "created_at ASC")

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.model())
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var args []interface{}
	var cond string
	switch {
	case filter.ID != "":
		cond = "id = " + arg(&args, filter.ID)
	case filter.Username != "":
		cond = "username = " + arg(&args, filter.Username)
	case filter.Email != "":
		cond = "email = " + arg(&args, filter.Email)
	case len(filter.UsernameOrEmail) == 2:
		cond = "(username = " + arg(&args, filter.UsernameOrEmail[0]) + " OR email = " + arg(&args, filter.UsernameOrEmail[1]) + ")"
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE `+cond+" LIMIT 1", args...)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.model(), nil
}

// UpdateUser only saves set fields.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	var args []interface{}
	var sets []string
	if usr.Name != "" {
		sets = append(sets, "name = "+arg(&args, usr.Name))
	}
	if usr.Username != "" {
		sets = append(sets, "username = "+arg(&args, usr.Username))
	}
	if usr.Email != "" {
		sets = append(sets, "email = "+arg(&args, usr.Email))
	}
	if usr.Role != "" {
		sets = append(sets, "role = "+arg(&args, usr.Role))
		sets = append(sets, "department = "+arg(&args, null.NewString(usr.Department, usr.Department != "")))
	}
	if usr.IsActive != nil {
		sets = append(sets, "is_active = "+arg(&args, *usr.IsActive))
	}
	if usr.PasswordHash != nil {
		sets = append(sets, "password_hash = "+arg(&args, usr.PasswordHash))
	}
	if !usr.LastLogin.IsZero() {
		sets = append(sets, "last_login = "+arg(&args, usr.LastLogin))
	}
	if !usr.UpdatedAt.IsZero() {
		sets = append(sets, "updated_at = "+arg(&args, usr.UpdatedAt))
	}
	if len(sets) == 0 {
		return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
	}

	q := `UPDATE "user" SET ` + joinSets(sets) + " WHERE id = " + arg(&args, usr.ID)
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID != "" {
		if updated, err := repo.UpdateUser(ctx, usr); err == nil {
			return updated, nil
		} else if errors.Cause(err) != user.ErrNotFound {
			return user.User{}, err
		}
	}
	return repo.CreateUser(ctx, usr)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var args []interface{}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id IN (`+inArgs(&args, ids)+")", args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
