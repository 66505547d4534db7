package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingImage UserState = "awaiting_image" // Ожидание снимка образца
	StateProcessing    UserState = "processing"     // Идёт разметка
)

// User представляет пользователя бота
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние пользователя
	Runs   int       // Сколько разметок выполнено
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// CompleteRun отмечает завершённую разметку и возвращает в меню
func (u *User) CompleteRun() {
	u.Runs++
	u.State = StateMainMenu
}
