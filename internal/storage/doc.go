// Package storage provides JSON-based persistence for parsed profile
// pages.
//
// Historical race data changes at most once a year, so profiles fetched
// in one run are still good in the next. The cache lives as a single
// profiles.json file in the data directory and entries expire after a
// TTL. It implements scraper.ProfileCache and is safe for use from
// concurrent scrape workers.
package storage
