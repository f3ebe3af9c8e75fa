package postgres

// Amounts are NUMERIC(78,0): a uint256 has at most 78 decimal digits.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS pools (
		chain_id BIGINT NOT NULL,
		pool_address TEXT NOT NULL,
		token_a TEXT NOT NULL,
		token_b TEXT NOT NULL,
		first_seen_block BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (chain_id, pool_address)
	)`,
	`CREATE TABLE IF NOT EXISTS pool_window_metrics (
		chain_id BIGINT NOT NULL,
		pool_address TEXT NOT NULL,
		window_size_seconds BIGINT NOT NULL,
		window_start_ts TIMESTAMPTZ NOT NULL,
		window_end_ts TIMESTAMPTZ NOT NULL,
		swap_count BIGINT NOT NULL,
		volume_a NUMERIC NOT NULL,
		volume_b NUMERIC NOT NULL,
		liquidity_adds BIGINT NOT NULL,
		liquidity_removes BIGINT NOT NULL,
		minted NUMERIC(78,0) NOT NULL,
		burned NUMERIC(78,0) NOT NULL,
		reserve_a NUMERIC,
		reserve_b NUMERIC,
		k_last NUMERIC(78,0),
		price NUMERIC,
		reserve_method TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (chain_id, pool_address, window_size_seconds, window_start_ts)
	)`,
	`CREATE TABLE IF NOT EXISTS pool_state (
		chain_id BIGINT NOT NULL,
		pool_address TEXT NOT NULL,
		token_a TEXT NOT NULL,
		token_b TEXT NOT NULL,
		reserve_a NUMERIC(78,0) NOT NULL,
		reserve_b NUMERIC(78,0) NOT NULL,
		k_last NUMERIC(78,0) NOT NULL,
		total_supply NUMERIC(78,0) NOT NULL,
		block_number BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (chain_id, pool_address)
	)`,
	`CREATE TABLE IF NOT EXISTS indexer_state (
		name TEXT PRIMARY KEY,
		last_processed_ts BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}
