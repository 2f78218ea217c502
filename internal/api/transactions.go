package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rickgao/igtrades/internal/auth"
	"github.com/rickgao/igtrades/internal/model"
)

// DefaultPageSize is the number of transactions requested per page.
const DefaultPageSize = 100

// DefaultPaginationTimeout bounds a full history fetch when the caller's
// context has no deadline.
const DefaultPaginationTimeout = 10 * time.Minute

// GetTransactions fetches one page of transaction history.
func (c *Client) GetTransactions(ctx context.Context, session *auth.Session, opts TransactionsOptions) (*TransactionsResponse, error) {
	if session.Validate() != nil {
		return nil, ErrNotConnected
	}

	query := url.Values{}
	query.Set("from", opts.From.Format(QueryDateLayout))
	query.Set("to", opts.To.Format(QueryDateLayout))
	if opts.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.PageNumber > 1 {
		query.Set("pageNumber", strconv.Itoa(opts.PageNumber))
	}

	var resp TransactionsResponse
	if err := c.get(ctx, "/history/transactions", query, session.Headers(), &resp); err != nil {
		return nil, fmt.Errorf("get transactions page %d: %w", max(opts.PageNumber, 1), err)
	}

	return &resp, nil
}

// GetAllTransactions fetches every page of history between from and to and
// returns only DEAL transactions. Pages are requested in ascending order,
// one at a time. An empty range returns an empty slice and no error.
func (c *Client) GetAllTransactions(ctx context.Context, session *auth.Session, from, to time.Time) ([]model.RawTransaction, error) {
	if session.Validate() != nil {
		return nil, ErrNotConnected
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPaginationTimeout)
		defer cancel()
	}

	opts := TransactionsOptions{From: from, To: to, PageSize: DefaultPageSize, PageNumber: 1}

	first, err := c.GetTransactions(ctx, session, opts)
	if err != nil {
		return nil, err
	}

	all := append([]APITransaction(nil), first.Transactions...)
	totalPages := first.Metadata.PageData.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}

	for page := 2; page <= totalPages; page++ {
		opts.PageNumber = page
		resp, err := c.GetTransactions(ctx, session, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Transactions...)
	}

	c.logger.Debug("fetched transaction history",
		"from", opts.From.Format(QueryDateLayout),
		"to", opts.To.Format(QueryDateLayout),
		"pages", totalPages,
		"transactions", len(all),
	)

	deals := make([]model.RawTransaction, 0, len(all))
	for i := range all {
		if string(all[i].TransactionType) != model.TransactionTypeDeal {
			continue
		}
		deals = append(deals, all[i].ToModel())
	}

	return deals, nil
}
