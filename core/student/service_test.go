package student

import (
	"context"
	"testing"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/user"
)

type fakeRepo struct {
	students []Student
}

var _ Repository = (*fakeRepo)(nil)

func (r *fakeRepo) CheckEmailUniqueness(_ context.Context, email string, excluded ...Student) error {
	for _, st := range r.students {
		if st.Email != email {
			continue
		}
		var excl bool
		for _, ex := range excluded {
			if ex.ID == st.ID {
				excl = true
				break
			}
		}
		if !excl {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateStudent(_ context.Context, st Student) (Student, error) {
	r.students = append(r.students, st)
	return st, nil
}

func (r *fakeRepo) QueryStudents(_ context.Context, filter *QueryFilter, _ []core.DBOrdering) ([]Student, error) {
	var out []Student
	for _, st := range r.students {
		if filter.Search != "" && !(core.ContainsFold(st.Name, filter.Search) || core.ContainsFold(st.Class, filter.Search)) {
			continue
		}
		if filter.Class != "" && st.Class != filter.Class {
			continue
		}
		if filter.Status != "" && st.Status != filter.Status {
			continue
		}
		if filter.ParentID != "" && st.ParentID != filter.ParentID {
			continue
		}
		if filter.ExcludeID != "" && st.ID == filter.ExcludeID {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func (r *fakeRepo) GetStudent(_ context.Context, filter GetFilter) (Student, error) {
	for _, st := range r.students {
		switch {
		case filter.ID != "":
			if st.ID == filter.ID {
				return st, nil
			}
		case filter.UserID != "":
			if st.UserID == filter.UserID {
				return st, nil
			}
		case filter.Email != "":
			if st.Email == filter.Email {
				return st, nil
			}
		}
	}
	return Student{}, ErrNotFound
}

func (r *fakeRepo) UpdateStudent(_ context.Context, st Student) (Student, error) { return st, nil }

func (r *fakeRepo) DeleteStudentsByID(_ context.Context, ids []string) (int, error) {
	return len(ids), nil
}

func newTestRepo() *fakeRepo {
	return &fakeRepo{students: []Student{
		{ID: "st1", UserID: "u3", ParentID: "u4", Name: "Tinashe Moyo", Class: "Form 4A", Status: StatusActive},
		{ID: "st2", ParentID: "u7", Name: "Chipo Mukamuri", Class: "Form 4A", Status: StatusActive},
		{ID: "st3", ParentID: "u7", Name: "John Mukamuri", Class: "Form 2B", Status: StatusActive},
		{ID: "st4", Name: "Rudo Chikafu", Class: "Form 2B", Status: StatusInactive},
	}}
}

func ids(students []Student) []string {
	out := make([]string, 0, len(students))
	for _, st := range students {
		out = append(out, st.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestServiceQuery(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRepo())

	admin := user.User{ID: "u1", Role: user.RoleAdmin}
	teacher := user.User{ID: "u2", Role: user.RoleTeacher}
	tinashe := user.User{ID: "u3", Role: user.RoleStudent}
	parent := user.User{ID: "u7", Role: user.RoleParent}

	tests := []struct {
		name    string
		viewer  user.User
		filter  *QueryFilter
		want    []string
		wantErr bool
	}{
		{name: "admin sees all", viewer: admin, want: []string{"st1", "st2", "st3", "st4"}},
		{name: "teacher sees all", viewer: teacher, want: []string{"st1", "st2", "st3", "st4"}},
		{name: "student sees classmates without self", viewer: tinashe, want: []string{"st2"}},
		{name: "parent sees own children", viewer: parent, want: []string{"st2", "st3"}},
		{
			name:   "search composes with parent scope",
			viewer: parent,
			filter: &QueryFilter{Search: "john"},
			want:   []string{"st3"},
		},
		{
			name:   "search composes with classmate scope",
			viewer: tinashe,
			filter: &QueryFilter{Search: "moyo"},
			want:   nil, // Tinashe matches the search but is excluded as self
		},
		{name: "unknown role denied", viewer: user.User{ID: "x", Role: "superuser"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Query(ctx, tt.viewer, tt.filter)
			if tt.wantErr {
				if !core.IsPermissionDenied(err) {
					t.Fatalf("Query() error = %v, want permission denied", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if !equal(ids(got), tt.want) {
				t.Errorf("Query() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestServiceQueryFilterIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRepo())
	parent := user.User{ID: "u7", Role: user.RoleParent}

	first, err := svc.Query(ctx, parent, &QueryFilter{Search: "mukamuri"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Query(ctx, parent, &QueryFilter{Search: "mukamuri"})
	if err != nil {
		t.Fatal(err)
	}
	if !equal(ids(first), ids(second)) {
		t.Errorf("repeated query differs: %v != %v", ids(first), ids(second))
	}
}

func TestServiceGetByID(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRepo())

	tinashe := user.User{ID: "u3", Role: user.RoleStudent}
	parent := user.User{ID: "u7", Role: user.RoleParent}

	tests := []struct {
		name    string
		viewer  user.User
		id      string
		wantErr bool
	}{
		{name: "admin reads anyone", viewer: user.User{ID: "u1", Role: user.RoleAdmin}, id: "st4"},
		{name: "student reads classmate", viewer: tinashe, id: "st2"},
		{name: "student cannot read self via classmates", viewer: tinashe, id: "st1", wantErr: true},
		{name: "student cannot read other class", viewer: tinashe, id: "st3", wantErr: true},
		{name: "parent reads own child", viewer: parent, id: "st3"},
		{name: "parent cannot read other child", viewer: parent, id: "st1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetByID(ctx, tt.viewer, tt.id)
			if tt.wantErr != (err != nil) {
				t.Errorf("GetByID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !core.IsPermissionDenied(err) {
				t.Errorf("GetByID() error = %v, want permission denied", err)
			}
		})
	}
}
