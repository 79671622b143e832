package rpc

import "context"

// SelectBest picks the best RPC URL from urls using the named algorithm
// ("fastest" or "failover"; empty means fastest). A single URL is returned
// without probing.
func SelectBest(ctx context.Context, urls []string, algorithm string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}
	algo := Algorithm(algorithm)
	if algo == "" {
		algo = AlgorithmFastest
	}
	return BestEVM(ctx, urls, algo)
}
