package models

// Video минимальная модель видео, достаточная для истории просмотров.
type Video struct {
	UID      string `json:"id"`
	Title    string `json:"title"`
	OwnerUID string `json:"-"`
}

// VideoOwner проекция владельца видео в истории просмотров.
// Учетные данные владельца в проекцию не попадают.
type VideoOwner struct {
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// WatchHistoryEntry элемент истории просмотров: видео и владелец.
// Порядок элементов - порядок добавления в историю.
type WatchHistoryEntry struct {
	VideoUID string     `json:"id"`
	Title    string     `json:"title"`
	Owner    VideoOwner `json:"owner"`
}
