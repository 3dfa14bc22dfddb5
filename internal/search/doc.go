// Package search builds SKKNI registry queries and runs them against SerpAPI.
//
// The Client retries transport failures, non-2xx responses and undecodable
// bodies up to a fixed attempt budget with linear backoff, giving each attempt
// its own deadline. Once the budget is spent it returns an ExhaustedError that
// wraps the last failure, so callers can degrade the affected lookup without
// aborting the run.
package search
