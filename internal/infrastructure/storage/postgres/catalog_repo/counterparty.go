package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/domain"
	"stockroom/internal/domain/catalogs/counterparty"
	"stockroom/internal/infrastructure/storage/postgres"
)

const counterpartyTable = "cat_counterparties"

// CounterpartyRepo implements counterparty.Repository.
type CounterpartyRepo struct {
	*BaseCatalogRepo[*counterparty.Counterparty]
}

// NewCounterpartyRepo creates a new counterparty repository.
func NewCounterpartyRepo(txm *postgres.TxManager) *CounterpartyRepo {
	return &CounterpartyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*counterparty.Counterparty](
			txm,
			counterpartyTable,
			postgres.ExtractDBColumns[counterparty.Counterparty](),
			func() *counterparty.Counterparty { return &counterparty.Counterparty{} },
		),
	}
}

// ListByType retrieves counterparties of the given type, including "both".
func (r *CounterpartyRepo) ListByType(ctx context.Context, cpType counterparty.CounterpartyType, filter domain.ListFilter) (domain.ListResult[*counterparty.Counterparty], error) {
	result := domain.ListResult[*counterparty.Counterparty]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.Builder().
		Select(postgres.ExtractDBColumns[counterparty.Counterparty]()...).
		From(counterpartyTable).
		Where(squirrel.Eq{"type": []string{string(cpType), string(counterparty.TypeBoth)}}).
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.Querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("name ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.Querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list by type: %w", err)
	}
	return result, nil
}
