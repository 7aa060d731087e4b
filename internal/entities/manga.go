package entities

import (
	"time"
)

type MangaStatus string

const (
	MangaStatusOnGoing   MangaStatus = "OnGoing"
	MangaStatusCompleted MangaStatus = "Completed"
)

// Manga is one catalog entry of the local mirror. IDs are assigned by the
// remote catalog service and never generated locally.
type Manga struct {
	ID            int64       `gorm:"column:manga_id;primaryKey;autoIncrement:false" json:"manga_id"`
	Title         string      `gorm:"column:title;uniqueIndex;size:512" json:"title"`
	Description   string      `gorm:"column:descr;type:text" json:"descr"`
	CoverImageURL string      `gorm:"column:cover_image_url;size:1024" json:"cover_image_url"`
	Status        MangaStatus `gorm:"column:status;size:20" json:"status"`
	Color         string      `gorm:"column:color;size:16" json:"color"`
	Rating        *float64    `gorm:"column:rating" json:"rating,omitempty"`
	Views         int64       `gorm:"column:views" json:"views"`
	MalURL        string      `gorm:"column:mal_url;size:1024" json:"mal_url"`
	UpdatedAt     time.Time   `gorm:"column:updated_at" json:"updated_at"`

	Chapters []Chapter `gorm:"foreignKey:MangaID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"chapters,omitempty"`

	// Filled by the query layer from the junction tables, not managed by GORM.
	Genres  []Genre  `gorm:"-" json:"genres,omitempty"`
	Authors []Author `gorm:"-" json:"authors,omitempty"`
}

func (Manga) TableName() string {
	return "mangas"
}

type Chapter struct {
	ID        int64     `gorm:"column:chapter_id;primaryKey;autoIncrement:false" json:"chapter_id"`
	MangaID   int64     `gorm:"column:manga_id;index" json:"manga_id"`
	Num       float64   `gorm:"column:chapter_num" json:"chapter_num"`
	Name      string    `gorm:"column:chapter_name;size:512" json:"chapter_name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Chapter) TableName() string {
	return "chapters"
}

type Genre struct {
	ID    int64  `gorm:"column:genre_id;primaryKey;autoIncrement:false" json:"genre_id"`
	Genre string `gorm:"column:genre;size:128" json:"genre"`
}

func (Genre) TableName() string {
	return "genres"
}

type Author struct {
	ID   int64  `gorm:"column:author_id;primaryKey;autoIncrement:false" json:"author_id"`
	Name string `gorm:"column:name;size:256" json:"name"`
	Role string `gorm:"column:role;size:64" json:"role"`
}

func (Author) TableName() string {
	return "authors"
}

// MangaGenre links a manga to a genre.
type MangaGenre struct {
	MangaID int64 `gorm:"column:manga_id;primaryKey;autoIncrement:false" json:"manga_id"`
	GenreID int64 `gorm:"column:genre_id;primaryKey;autoIncrement:false" json:"genre_id"`

	Manga Manga `gorm:"foreignKey:MangaID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Genre Genre `gorm:"foreignKey:GenreID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (MangaGenre) TableName() string {
	return "manga_genres"
}

// MangaAuthor links a manga to an author in a specific role (story, art, ...).
// The same author can appear twice for one manga under different roles.
type MangaAuthor struct {
	MangaID  int64  `gorm:"column:manga_id;primaryKey;autoIncrement:false" json:"manga_id"`
	AuthorID int64  `gorm:"column:author_id;primaryKey;autoIncrement:false" json:"author_id"`
	Role     string `gorm:"column:role;primaryKey;size:64" json:"role"`

	Manga  Manga  `gorm:"foreignKey:MangaID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Author Author `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (MangaAuthor) TableName() string {
	return "manga_authors"
}
