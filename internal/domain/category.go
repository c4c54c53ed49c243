package domain

// Category is a display category. Values are the backend's wire strings.
type Category string

const (
	CategorySoftSkill  Category = "софт-скил"
	CategoryHardSkill  Category = "хард-скил"
	CategoryOther      Category = "другое"
	CategoryAdditional Category = "дополнительное"
	CategoryButton     Category = "кнопка"
)

var categoryModifiers = map[Category]string{
	CategorySoftSkill:  "soft",
	CategoryHardSkill:  "hard",
	CategoryOther:      "other",
	CategoryAdditional: "additional",
	CategoryButton:     "button",
}

// Modifier returns the CSS modifier for the category, "other" when unknown.
func (c Category) Modifier() string {
	if m, ok := categoryModifiers[c]; ok {
		return m
	}
	return "other"
}
