// Package scraper fetches and parses stoltzen.no race pages.
//
// Two page shapes are understood: the main results table (position,
// name with a stat.php profile link, time, class) and individual
// stat.php profile pages (participation count, current-year time and
// the historical results used for personal-best resolution). Profile
// pages are fetched by a bounded worker pool; all parsing hands its
// time tokens to the timing package and its text to textenc so only
// canonical times and clean UTF-8 reach the data model.
package scraper
