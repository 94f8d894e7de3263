package dto

// VODResponse describes one video in the library listing.
type VODResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}
