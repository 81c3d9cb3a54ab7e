package inmemdb

import (
	"context"
	"sort"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/fee"
)

type feeRepository struct {
	db *DB
}

var _ fee.Repository = (*feeRepository)(nil)

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db}
}

func (repo *feeRepository) CreateFee(_ context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if f.ID == "" {
		f.ID = newPK()
	}
	repo.db.fees[f.ID] = &f
	return f, nil
}

func (repo *feeRepository) QueryFees(_ context.Context, filter *fee.QueryFilter, ordering []core.DBOrdering) ([]fee.Fee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = new(fee.QueryFilter)
	}
	var out []fee.Fee
	for _, f := range repo.db.fees {
		if filter.Search != "" && !(core.ContainsFold(f.StudentName, filter.Search) || core.ContainsFold(f.FeeType, filter.Search)) {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.ParentID != "" && f.ParentID != filter.ParentID {
			continue
		}
		out = append(out, *f)
	}

	ord := core.DBOrdering{Field: "due_date", Ascending: true}
	if len(ordering) > 0 {
		ord = ordering[0]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !ord.Ascending {
			i, j = j, i
		}
		switch ord.Field {
		case "student_name":
			return out[i].StudentName < out[j].StudentName
		default:
			return out[i].DueDate.Before(out[j].DueDate)
		}
	})
	return out, nil
}

func (repo *feeRepository) GetFee(_ context.Context, id string) (fee.Fee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if f, ok := repo.db.fees[id]; ok {
		return *f, nil
	}
	return fee.Fee{}, fee.ErrNotFound
}

func (repo *feeRepository) UpdateFee(_ context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.fees[f.ID]; !ok {
		return fee.Fee{}, fee.ErrNotFound
	}
	repo.db.fees[f.ID] = &f
	return f, nil
}

func (repo *feeRepository) DeleteFeesByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.fees[id]; ok {
			delete(repo.db.fees, id)
			n++
		}
	}
	return n, nil
}
