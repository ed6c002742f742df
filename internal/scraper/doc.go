// Package scraper fetches the NHK news listing and articles and turns them
// into structured records.
//
// The listing is NHK's paginated JSON feed for the coronavirus topic; pages
// are fetched strictly in order through an iterator. Headlines are classified
// by prefecture and by confirmed or death count, and the national daily
// summary article is located by its URL date and title markers. The summary
// extractor applies a fixed battery of patterns to the article body.
package scraper
