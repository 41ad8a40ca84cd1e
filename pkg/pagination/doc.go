// Package pagination walks cursor-paginated SportMonks responses.
//
// Every page is a JSON envelope:
//
//	{"data": [...], "pagination": {"has_more": true, "next_page": 2, ...}}
//
// An Iterator requests pages lazily and yields one record at a time. The
// next page is only requested once the consumer has read every record of
// the current one, so stopping early never costs extra requests.
//
// Example usage:
//
//	it := apiClient.Iterate(ctx, "teams", params)
//	for it.Next() {
//		var team sportmonks.Team
//		_ = sonic.Unmarshal(it.Record(), &team)
//	}
//	if err := it.Err(); err != nil {
//		return err
//	}
//
// BatchFetcher drains several independent resources concurrently with a
// bounded pool. Pages of one resource are always fetched in order.
package pagination
