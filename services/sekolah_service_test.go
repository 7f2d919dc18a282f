package services

import (
	"context"
	"testing"
	"time"

	"sim-talenta-gtk-api/models"
	"sim-talenta-gtk-api/utils"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockSekolahService(t *testing.T) (*SekolahService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return NewSekolahService(gormDB), mock
}

func TestSekolahServiceCreateFillsDefaults(t *testing.T) {
	svc, mock := newMockSekolahService(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sekolah`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sekolah := &models.Sekolah{Nama: "SLB Negeri Kota Batu", Npsn: "20533817", Status: models.StatusSekolahNegeri, Kota: models.KotaBatu}
	require.NoError(t, svc.Create(context.Background(), sekolah))
	assert.NotEmpty(t, sekolah.ID)
	assert.Equal(t, models.JenjangSLB, sekolah.Jenjang)
	assert.Equal(t, DefaultAlamat, sekolah.Alamat)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSekolahServiceCreateDuplicateNpsn(t *testing.T) {
	svc, mock := newMockSekolahService(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sekolah`").WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := svc.Create(context.Background(), &models.Sekolah{Nama: "SMAN 1", Npsn: "20533817", Status: models.StatusSekolahNegeri, Kota: models.KotaBatu})
	assert.ErrorIs(t, err, ErrNpsnTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSekolahServiceGetNotFound(t *testing.T) {
	svc, mock := newMockSekolahService(t)
	mock.ExpectQuery("SELECT \\* FROM `sekolah` WHERE id = \\?").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSekolahNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizePage(t *testing.T) {
	page, limit := normalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	page, limit = normalizePage(3, 1000)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, limit)
}

func TestSekolahServiceCreateRejectsMalformedNpsn(t *testing.T) {
	svc, mock := newMockSekolahService(t)

	err := svc.Create(context.Background(), &models.Sekolah{Nama: "SMAN 1", Npsn: "2053381A", Status: models.StatusSekolahNegeri, Kota: models.KotaBatu})
	fe, ok := utils.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "npsn", fe.Field)
	assert.Equal(t, "NPSN harus 8 digit angka", fe.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSekolahServiceUpdate(t *testing.T) {
	svc, mock := newMockSekolahService(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	row := func(npsn string) *sqlmock.Rows {
		return sqlmock.NewRows(sekolahColumns).AddRow("s-1", "SMAN 1 Batu", npsn, "SMA", "negeri", "kota_batu", "-", created)
	}

	mock.ExpectQuery("SELECT \\* FROM `sekolah` WHERE id = \\?").WillReturnRows(row("20533817"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sekolah` SET").
		WithArgs("20533818", sqlmock.AnyArg(), "s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT \\* FROM `sekolah` WHERE id = \\?").WillReturnRows(row("20533818"))

	sekolah, err := svc.Update(context.Background(), "s-1", map[string]interface{}{"npsn": "20533818"})
	require.NoError(t, err)
	assert.Equal(t, "20533818", sekolah.Npsn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSekolahServiceUpdateDuplicateNpsn(t *testing.T) {
	svc, mock := newMockSekolahService(t)
	mock.ExpectQuery("SELECT \\* FROM `sekolah` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows(sekolahColumns).AddRow("s-1", "SMAN 1 Batu", "20533817", "SMA", "negeri", "kota_batu", "-", time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sekolah` SET").WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), "s-1", map[string]interface{}{"npsn": "20533818"})
	assert.ErrorIs(t, err, ErrNpsnTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSekolahServiceUpdateValidatesBeforeQuerying(t *testing.T) {
	svc, mock := newMockSekolahService(t)

	_, err := svc.Update(context.Background(), "s-1", map[string]interface{}{})
	assert.ErrorIs(t, err, ErrNothingToSave)

	_, err = svc.Update(context.Background(), "s-1", map[string]interface{}{"npsn": "123"})
	_, ok := utils.AsFieldError(err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSekolahServiceDeleteRefusesWhileStaffed(t *testing.T) {
	svc, mock := newMockSekolahService(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM `sekolah` WHERE id = \\?").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s-1"))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `gtk` WHERE sekolah_id = \\?").WithArgs("s-1").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	assert.ErrorIs(t, svc.Delete(context.Background(), "s-1"), ErrSekolahInUse)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSekolahServiceDelete(t *testing.T) {
	svc, mock := newMockSekolahService(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM `sekolah` WHERE id = \\?").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s-1"))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `gtk` WHERE sekolah_id = \\?").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM `sekolah` WHERE id = \\?").WithArgs("s-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), "s-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
