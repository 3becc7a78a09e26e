package models

// Subscription направленное ребро подписки: subscriber подписан на канал channel.
// Используется только для агрегации на чтении, полезной нагрузки не несет.
type Subscription struct {
	SubscriberUID string
	ChannelUID    string
}

// ChannelProfile агрегированная проекция канала для просмотра профиля.
// Содержит только публичные поля пользователя и счетчики подписок.
type ChannelProfile struct {
	FullName                  string `json:"fullName"`
	Username                  string `json:"username"`
	AvatarURL                 string `json:"avatar"`
	CoverImageURL             string `json:"coverImage,omitempty"`
	SubscribersCount          int    `json:"subscribersCount"`
	ChannelsSubscribedToCount int    `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
	Email                     string `json:"email"`
}
