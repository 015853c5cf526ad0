package model

// Category - общий справочник категорий, у траты хранится только ссылка на ID
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}
