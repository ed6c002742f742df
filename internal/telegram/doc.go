// Package telegram sends plain-text messages to a chat through the
// Telegram Bot API.
//
// Authentication requires a bot token (from @BotFather) and chat ID.
package telegram
