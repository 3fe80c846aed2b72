package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name FROM subjects ORDER BY name")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name"}).
			AddRow("sub1", "AL-PHY", "A-Level Physics").
			AddRow("sub2", "GCSE-MATH", "GCSE Maths"))

	subjects, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "AL-PHY", subjects[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryReplaceUserSubjects(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_subjects WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_subjects (id, user_id, subject_id) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), "u1", "sub1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_subjects (id, user_id, subject_id) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), "u1", "sub2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceUserSubjects(context.Background(), "u1", []string{"sub1", "sub2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryReplaceWithEmptySetOnlyDeletes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teacher_subjects WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceTeacherSubjects(context.Background(), "t1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryTeacherTeaches(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1")).
		WithArgs("t1", "sub1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	teaches, err := repo.TeacherTeaches(context.Background(), "t1", "sub1")
	require.NoError(t, err)
	assert.True(t, teaches)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1")).
		WithArgs("t1", "sub2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	teaches, err = repo.TeacherTeaches(context.Background(), "t1", "sub2")
	require.NoError(t, err)
	assert.False(t, teaches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositorySeedSubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), "GCSE-MATH", "GCSE Maths").
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := repo.SeedSubject(context.Background(), "GCSE-MATH", "GCSE Maths")
	require.NoError(t, err)
	assert.True(t, created)

	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), "GCSE-MATH", "GCSE Maths").
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err = repo.SeedSubject(context.Background(), "GCSE-MATH", "GCSE Maths")
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
