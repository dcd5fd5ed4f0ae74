// Package docs Photo Watermark API.
//
// Сервис водяных знаков для фотографий: время съёмки, место (обратное
// геокодирование через семь сервисов), возраст ребёнка и свой текст.
//
// Основные возможности:
// - Чтение EXIF: время съёмки, GPS, камера
// - Каталог системных шрифтов
// - Обратное геокодирование с кешем в Redis
// - Предпросмотр и пакетная обработка, синхронно или через очередь воркера
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
