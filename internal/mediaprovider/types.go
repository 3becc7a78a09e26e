package mediaprovider

// UploadResult ответ сервиса загрузки медиа: публичный URL загруженного файла.
type UploadResult struct {
	URL string `json:"url"`
}
