package infra

const (
	// RedisNamespace — базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "traveldesk"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanRequestTransitions — канал трансляции переходов жизненного цикла.
	// Слушатели (почтовый воркер, интеграции) доставляют уведомления адресату;
	// сам сервис только публикует и никогда не ждет подтверждения.
	RedisChanRequestTransitions = RedisNamespace + ":requests:transition-signal"
)
