// Package letterboxd turns a public Letterboxd list or watchlist into an
// ordered, distinct list of title strings for the batch pipeline.
//
// Titles come from data-film-slug attributes (title-cased) and from poster
// image alt text. Pagination follows the "next" link for a bounded number of
// pages.
package letterboxd
