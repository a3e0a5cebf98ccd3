package models

// PageRequest is the payload for POST /all and POST /movie_details.
type PageRequest struct {
	// URL is the page to scrape. An empty URL is answered with 404.
	URL string `json:"url"`
}
