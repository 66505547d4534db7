package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "groundtruth-bot/internal/application"
	"groundtruth-bot/internal/container"
	"groundtruth-bot/internal/domain/entity"
	"groundtruth-bot/internal/logger"
)

const component = "bot"

const (
	msgStart = `👋 Привет! Я строю эталонную разметку снимков образцов: подложка (0) и материал (1).

📎 Пришлите снимок файлом (TIFF без сжатия) или фото, и я верну маску.

📋 Команды:
/gt — разметить снимок
/labels — прислать метки последней разметки
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /gt
2️⃣ Пришлите многоканальный снимок файлом
3️⃣ Получите маску (белый — материал), наложение на снимок и статистику
4️⃣ /labels — текстовый файл с метками 0/1 построчно

💡 Область кадра и эталонные окна задаются в конфигурации сервиса.

📋 Команды:
/gt — начать разметку
/cancel — отменить операцию`

	msgAwaitingImage   = "📎 Пришлите снимок образца файлом для разметки."
	msgCancelled       = "❌ Операция отменена. Отправьте /gt для новой разметки."
	msgSendImage       = "📎 Пожалуйста, пришлите снимок образца файлом или фото."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Размечаю снимок..."
	msgStartFirst      = "ℹ️ Чтобы разметить снимок, сначала отправьте /gt."
	msgNoLabels        = "ℹ️ Разметок пока нет. Отправьте /gt."
	msgProcessingError = "⚠️ Не удалось разметить снимок. Проверьте формат файла и размер кадра."
	msgConfigError     = "⚠️ Снимок не подходит под настроенную область кадра или эталонные окна."
	msgDegenerate      = "⚠️ Снимок однотонный в области кадра, разметка невозможна."
)

// Bot представляет Telegram-бота
type Bot struct {
	api *tgbotapi.BotAPI
	app *container.Container
	log logger.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	c.Log.Info(component, "authorized", map[string]interface{}{"account": api.Self.UserName})

	return &Bot{
		api: api,
		app: c,
		log: c.Log,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	user, err := b.app.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error(component, err, map[string]interface{}{"user_id": msg.From.ID})
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Снимок файлом или фото
	if fileID, ok := imageFileID(msg); ok {
		if !acceptsImage(user) {
			b.sendMessage(msg.Chat.ID, msgStartFirst)
			return
		}
		b.handleImage(ctx, msg, user, fileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendImage)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	var err error
	switch msg.Command() {
	case "start":
		_, err = b.app.UserService.Cancel(ctx, user.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "gt":
		_, err = b.app.UserService.BeginLabeling(ctx, user.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgAwaitingImage)

	case "labels":
		b.sendLabels(ctx, msg.Chat.ID, user.ID)

	case "cancel":
		_, err = b.app.UserService.Cancel(ctx, user.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}

	if err != nil {
		b.log.Error(component, err, map[string]interface{}{"command": msg.Command(), "user_id": user.ID})
	}
}

// handleImage размечает присланный снимок и отправляет маску
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID string) {
	if err := b.app.UserService.StartProcessing(ctx, user.ID); err != nil {
		b.log.Error(component, err, map[string]interface{}{"user_id": user.ID})
	}
	b.sendMessage(msg.Chat.ID, msgProcessing)

	out, err := b.process(ctx, user.ID, fileID)
	if _, ferr := b.app.UserService.FinishLabeling(ctx, user.ID, msg.Chat.ID, err == nil); ferr != nil {
		b.log.Error(component, ferr, map[string]interface{}{"user_id": user.ID})
	}
	if err != nil {
		b.log.Error(component, err, map[string]interface{}{"user_id": user.ID, "file_id": fileID})
		b.sendMessage(msg.Chat.ID, errorMessage(err))
		return
	}

	mask := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "mask.png", Bytes: out.Mask})
	mask.Caption = formatSummary(out.GroundTruth)
	b.send(mask)

	overlay := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "overlay.png", Bytes: out.Overlay})
	overlay.Caption = "Материал подсвечен красным"
	b.send(overlay)
}

func (b *Bot) process(ctx context.Context, userID int64, fileID string) (*app.Output, error) {
	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	b.log.Debug(component, "image received", map[string]interface{}{"bytes": len(data), "user_id": userID})

	return b.app.GroundTruthService.GenerateFor(ctx, userID, data)
}

// sendLabels отправляет метки последней разметки текстовым файлом
func (b *Bot) sendLabels(ctx context.Context, chatID, userID int64) {
	labels, err := b.app.GroundTruthService.LastLabels(ctx, userID)
	if err != nil {
		b.log.Error(component, err, map[string]interface{}{"user_id": userID})
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	if labels == nil {
		b.sendMessage(chatID, msgNoLabels)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "labels.txt", Bytes: labels})
	doc.Caption = "0 — подложка, 1 — материал"
	b.send(doc)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Error(component, err, map[string]interface{}{"action": "send"})
	}
}

// acceptsImage сообщает, ждёт ли пользователь снимок после /gt
func acceptsImage(user *entity.User) bool {
	return user.State == entity.StateAwaitingImage
}

// imageFileID выбирает файл снимка: документ, иначе фото максимального размера
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if msg.Document != nil {
		return msg.Document.FileID, true
	}
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	return "", false
}

// errorMessage подбирает текст ответа по виду ошибки
func errorMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrInvalidConfiguration), errors.Is(err, entity.ErrShapeMismatch):
		return msgConfigError
	case errors.Is(err, entity.ErrDegenerateImage):
		return msgDegenerate
	default:
		return msgProcessingError
	}
}

// formatSummary подпись к маске: доля материала, эталоны, исправления
func formatSummary(gt *entity.GroundTruth) string {
	substrate, material := gt.Labels.Counts()
	return fmt.Sprintf(`✅ Разметка %dx%d готова
Материал: %d (%.1f%%), подложка: %d
Эталоны сверху: подложка %.1f, материал %.1f
Эталоны снизу: подложка %.1f, материал %.1f
Исправлено изолированных пикселей: %d`,
		gt.Labels.Width, gt.Labels.Height,
		material, gt.MaterialFraction()*100, substrate,
		gt.Stats.SubstrateTop, gt.Stats.MaterialTop,
		gt.Stats.SubstrateBottom, gt.Stats.MaterialBottom,
		gt.Flipped)
}
