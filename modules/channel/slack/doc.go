// Package slack implements the Slack channel for slackbridge.
//
// Inbound traffic arrives either through the HTTP gateway as Events API
// webhooks, interactive-component payloads, and slash commands, or over a
// Socket Mode connection. Every inbound payload is authenticated (v0
// request signing in webhook mode), classified into one of the wire body
// kinds, and normalized into a canonical message.Event before it reaches
// the bot pipeline. Outbound messages go through the Web API
// (chat.postMessage) or the response_url of the originating interaction.
package slack
