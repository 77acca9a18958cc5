package models

type ContentKind string

const (
	ContentText             ContentKind = "text"
	ContentPhoto            ContentKind = "photo"
	ContentPhotoWithCaption ContentKind = "photo_caption"
)

// Content - полезная нагрузка свободного сообщения: чек об оплате от клиента
// или ответ оператора. Вместо проверок "есть ли фото" по месту - явный тег.
type Content struct {
	Kind    ContentKind `json:"kind"`
	Text    string      `json:"text,omitempty"`
	PhotoID string      `json:"photo_id,omitempty"` // file_id фото в Telegram
	Caption string      `json:"caption,omitempty"`
}

func TextContent(text string) Content {
	return Content{Kind: ContentText, Text: text}
}

func PhotoContent(photoID string) Content {
	return Content{Kind: ContentPhoto, PhotoID: photoID}
}

func PhotoWithCaption(photoID, caption string) Content {
	return Content{Kind: ContentPhotoWithCaption, PhotoID: photoID, Caption: caption}
}

// Empty - у сообщения нет ни текста, ни фото.
func (c Content) Empty() bool {
	return c.Text == "" && c.PhotoID == ""
}

// Message - входящее сообщение от пользователя или оператора.
type Message struct {
	ChatID    int64
	UserID    int64
	Username  string
	FullName  string
	MessageID int
	Text      string
	PhotoID   string // file_id самого крупного фото, если оно есть
}

// AsContent собирает тегированную нагрузку сообщения.
func (m Message) AsContent() Content {
	switch {
	case m.PhotoID != "" && m.Text != "":
		return PhotoWithCaption(m.PhotoID, m.Text)
	case m.PhotoID != "":
		return PhotoContent(m.PhotoID)
	default:
		return TextContent(m.Text)
	}
}

// CallbackQuery - нажатие на инлайн-кнопку.
type CallbackQuery struct {
	ID        string // ID callback запроса
	UserID    int64  // ID пользователя, который нажал на кнопку
	Username  string // Логин пользователя в Telegram
	ChatID    int64  // Чат, в котором была нажата кнопка
	MessageID int    // Сообщение, в котором была нажата кнопка
	Data      string // Данные callback запроса (например, "approve_70214")
}
