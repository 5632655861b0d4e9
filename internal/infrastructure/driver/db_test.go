package driver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pot-code/course-service/internal/infrastructure/driver"
	"github.com/pot-code/course-service/internal/infrastructure/driver/drivertest"
	"github.com/stretchr/testify/assert"
)

func TestRunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit on success", func(t *testing.T) {
		db := drivertest.New(driver.DialectPostgres)
		err := driver.RunInTx(ctx, db, nil, func(tx driver.ITransactionalDB) error {
			assert.True(t, tx.InTx())
			_, err := tx.ExecContext(ctx, "UPDATE lesson SET name = $1", "a")
			return err
		})
		assert.NoError(t, err)

		begun, committed, rolledBack := db.TxStats()
		assert.Equal(t, 1, begun)
		assert.Equal(t, 1, committed)
		assert.Equal(t, 0, rolledBack)
		assert.True(t, db.Calls()[0].InTx)
	})

	t.Run("rollback on failure", func(t *testing.T) {
		db := drivertest.New(driver.DialectPostgres)
		boom := errors.New("boom")
		err := driver.RunInTx(ctx, db, nil, func(tx driver.ITransactionalDB) error {
			return boom
		})
		assert.True(t, errors.Is(err, boom))

		_, committed, rolledBack := db.TxStats()
		assert.Equal(t, 0, committed)
		assert.Equal(t, 1, rolledBack)
	})

	t.Run("joins an open transaction", func(t *testing.T) {
		db := drivertest.New(driver.DialectPostgres)
		err := driver.RunInTx(ctx, db, nil, func(tx driver.ITransactionalDB) error {
			return driver.RunInTx(ctx, tx, nil, func(inner driver.ITransactionalDB) error {
				assert.Equal(t, tx, inner)
				return nil
			})
		})
		assert.NoError(t, err)

		begun, committed, _ := db.TxStats()
		assert.Equal(t, 1, begun)
		assert.Equal(t, 1, committed)
	})

	t.Run("begin failure", func(t *testing.T) {
		db := drivertest.New(driver.DialectPostgres).FailBegin(errors.New("no connection"))
		called := false
		err := driver.RunInTx(ctx, db, nil, func(tx driver.ITransactionalDB) error {
			called = true
			return nil
		})
		assert.Error(t, err)
		assert.False(t, called)
	})
}
