package db

type Bookmark struct {
	Username string
	WorkID   string
	Position int64
}

type Kudo struct {
	Username string
	WorkID   string
}

type Reading struct {
	Username string
	WorkID   string
	LastRead int64
}

type Work struct {
	ID        string
	Title     string
	Author    string
	Data      string
	FetchedAt int64
}
