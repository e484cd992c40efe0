package pg

import (
	"context"
	"database/sql"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	trmmanager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"

	"pagesync/internal/domain"
)

// TxManager runs a page write (store put plus registry upsert) as one unit of work.
type TxManager struct {
	tm trm.Manager
}

func NewTxManager(db *sql.DB) domain.UnitOfWork {
	return &TxManager{
		tm: trmmanager.Must(
			trmsql.NewDefaultFactory(db),
			trmmanager.WithCtxManager(trmcontext.DefaultManager),
		),
	}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.tm.Do(ctx, fn)
}

// conn returns the transaction bound to ctx by WithinTx, or db outside of one.
func conn(ctx context.Context, db *sql.DB) trmsql.Tr {
	return trmsql.DefaultCtxGetter.DefaultTrOrDB(ctx, db)
}
