package handlers

import "time"

// LinkBody is the public representation of a link.
type LinkBody struct {
	ID          string     `doc:"Link identifier"                    example:"5f0c8a52-8f8e-4d2c-9b43-3f2a3b9e1c11" json:"id"`
	OriginalURL string     `doc:"The original URL"                   example:"https://example.com/very/long/path"  json:"originalUrl"`
	ShortCode   string     `doc:"The short code"                     example:"Ab3xYz"                              json:"shortCode"`
	ShortURL    string     `doc:"The full short URL"                 example:"http://localhost:8888/Ab3xYz"        json:"shortUrl"`
	CreatedAt   time.Time  `doc:"Creation time"                      json:"createdAt"`
	ExpiresAt   *time.Time `doc:"Expiry time, if any"                json:"expiresAt,omitempty"`
	ClickCount  int64      `doc:"Clicks, reconciled across counters" json:"clickCount"`
}

// CreateLinkRequest is the request body for creating a short link.
type CreateLinkRequest struct {
	Body struct {
		URL        string     `doc:"The URL to shorten"                          example:"https://example.com/very/long/path" json:"url"`
		CustomCode string     `doc:"Requested short code, 4 to 10 characters"    example:"my-link"                            json:"customCode,omitempty"`
		ExpiresAt  *time.Time `doc:"When the link stops resolving, if ever"      json:"expiresAt,omitempty"`
	}
}

// CreateLinkResponse is the response for a successfully created link.
type CreateLinkResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     LinkBody
}

// CodeRequest addresses a single link by its code.
type CodeRequest struct {
	Code string `doc:"The short code" example:"Ab3xYz" path:"code"`
}

// LinkResponse returns a single link.
type LinkResponse struct {
	Body LinkBody
}

// RecentLinksRequest selects how many recent links to list.
type RecentLinksRequest struct {
	Count int `default:"10" doc:"Number of links, at most 50" query:"count"`
}

// RecentLinksResponse lists links, newest first.
type RecentLinksResponse struct {
	Body []LinkBody
}

// StatsResponse reports usage of a link.
type StatsResponse struct {
	Body struct {
		ShortCode          string     `doc:"The short code"                         json:"shortCode"`
		OriginalURL        string     `doc:"The original URL"                       json:"url"`
		ClickCount         int64      `doc:"Larger of the two counters"             json:"clickCount"`
		DatabaseClickCount int64      `doc:"Durable click counter"                  json:"databaseClickCount"`
		RealtimeClickCount int64      `doc:"Cached click counter"                   json:"realtimeClickCount"`
		CreatedAt          time.Time  `doc:"Creation time"                          json:"createdAt"`
		ExpiresAt          *time.Time `doc:"Expiry time, if any"                    json:"expiresAt,omitempty"`
		IsExpired          bool       `doc:"Whether the link has expired"           json:"isExpired"`
		DaysActive         int        `doc:"Whole days since the link was created"  json:"daysActive"`
	}
}

// RedirectResponse sends the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}
