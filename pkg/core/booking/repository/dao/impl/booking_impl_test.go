package dao

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cloudwego/hertz/pkg/common/test/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"staybook/pkg/core/booking/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	assert.Nil(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	assert.Nil(t, err)
	return db, mock
}

func TestGormBookingCreateAndList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormBookingRepository(db)
	checkIn := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.Add(48 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `bookings`")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	booking := &model.Booking{Place: "p1", User: "u1", CheckIn: checkIn, CheckOut: checkOut, Name: "Alice", Phone: "1", Price: 200}
	assert.Nil(t, repo.Create(context.Background(), booking))
	assert.NotEqual(t, "", booking.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings` WHERE user_id = ? ORDER BY check_in")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "place_id", "user_id", "check_in", "check_out", "name", "phone", "price"}).
			AddRow(booking.ID, "p1", "u1", checkIn, checkOut, "Alice", "1", 200.0))

	bookings, err := repo.FindByUser(context.Background(), "u1")
	assert.Nil(t, err)
	assert.DeepEqual(t, 1, len(bookings))
	assert.DeepEqual(t, "p1", bookings[0].Place)
	assert.DeepEqual(t, checkIn, bookings[0].CheckIn)
	assert.Nil(t, mock.ExpectationsWereMet())
}
