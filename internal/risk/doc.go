// Package risk buckets banks by two balance-sheet proxies and tabulates the
// share of receiverships in each bucket pair.
//
// The solvency proxy is undivided profits over book equity; the funding
// vulnerability proxy is borrowed money (bills payable plus rediscounts)
// over total assets. Each proxy is split at empirical quantiles taken across
// the whole dataset and the two category axes are crossed into a fixed 3×3
// grid of mean is_rec rates.
package risk
