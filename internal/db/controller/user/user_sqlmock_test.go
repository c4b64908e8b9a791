package user_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

func TestCreateMapsUniqueIndexViolation(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)

	// the email check passes, then a concurrent insert wins the unique index
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'clerk@stmary.test'"})
	mock.ExpectRollback()

	_, err = user.Create(db, user.Input{Name: "Clerk", Email: "clerk@stmary.test", Password: password})
	require.ErrorIs(t, err, errs.ErrDuplicateName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
