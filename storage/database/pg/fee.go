package pgdb

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/fee"
)

type feeRow struct {
	ID          string      `db:"id"`
	StudentID   string      `db:"student_id"`
	StudentName string      `db:"student_name"`
	ParentID    null.String `db:"parent_id"`
	ParentName  null.String `db:"parent_name"`
	AmountDue   float64     `db:"amount_due"`
	AmountPaid  float64     `db:"amount_paid"`
	FeeType     string      `db:"fee_type"`
	DueDate     null.Time   `db:"due_date"`
	Status      string      `db:"status"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (r feeRow) model() fee.Fee {
	return fee.Fee{
		ID:          r.ID,
		StudentID:   r.StudentID,
		StudentName: r.StudentName,
		ParentID:    r.ParentID.String,
		ParentName:  r.ParentName.String,
		AmountDue:   r.AmountDue,
		AmountPaid:  r.AmountPaid,
		FeeType:     r.FeeType,
		DueDate:     r.DueDate.Time,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

type feeRepository struct {
	db *sqlx.DB
}

var _ fee.Repository = (*feeRepository)(nil)

func NewFeeRepository(db *sqlx.DB) fee.Repository {
	return &feeRepository{db: db}
}

func (repo *feeRepository) CreateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO fee (id, student_id, student_name, parent_id, parent_name, amount_due, amount_paid,
			fee_type, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := repo.db.ExecContext(ctx, q,
		f.ID, f.StudentID, f.StudentName,
		null.NewString(f.ParentID, f.ParentID != ""), null.NewString(f.ParentName, f.ParentName != ""),
		f.AmountDue, f.AmountPaid, f.FeeType, f.DueDate, f.Status, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fee.Fee{}, errors.Wrap(err, "creating fee")
	}
	return f, nil
}

func (repo *feeRepository) QueryFees(ctx context.Context, filter *fee.QueryFilter, ordering []core.DBOrdering) ([]fee.Fee, error) {
	if filter == nil {
		filter = new(fee.QueryFilter)
	}

	var args []interface{}
	var conds []string
	if filter.Search != "" {
		ph := arg(&args, "%"+filter.Search+"%")
		conds = append(conds, "(student_name ILIKE "+ph+" OR fee_type ILIKE "+ph+")")
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(&args, filter.Status))
	}
	if filter.ParentID != "" {
		conds = append(conds, "parent_id = "+arg(&args, filter.ParentID))
	}

	allowed := map[string]bool{"due_date": true, "student_name": true, "created_at": true}
	q := "SELECT * FROM fee" + where(conds) + orderBy(ordering, allowed, "due_date ASC")

	var rows []feeRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying fees")
	}
	fees := make([]fee.Fee, 0, len(rows))
	for _, row := range rows {
		fees = append(fees, row.model())
	}
	return fees, nil
}

func (repo *feeRepository) GetFee(ctx context.Context, id string) (fee.Fee, error) {
	var row feeRow
	err := repo.db.GetContext(ctx, &row, "SELECT * FROM fee WHERE id = $1 LIMIT 1", id)
	if err == sql.ErrNoRows {
		return fee.Fee{}, fee.ErrNotFound
	}
	if err != nil {
		return fee.Fee{}, errors.Wrap(err, "getting fee")
	}
	return row.model(), nil
}

func (repo *feeRepository) UpdateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	const q = `
		UPDATE fee
		SET amount_due = $1, amount_paid = $2, status = $3, updated_at = $4
		WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, q, f.AmountDue, f.AmountPaid, f.Status, f.UpdatedAt, f.ID)
	if err != nil {
		return fee.Fee{}, errors.Wrap(err, "updating fee")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fee.Fee{}, fee.ErrNotFound
	}
	return f, nil
}

func (repo *feeRepository) DeleteFeesByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var args []interface{}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM fee WHERE id IN ("+inArgs(&args, ids)+")", args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting fees")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
