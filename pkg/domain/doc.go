// Package domain contains the core entities the bot works with: Reddit
// submissions and comments, the bot's own account, and the ledger record of a
// posted correction. They are free of transport and storage concerns so every
// layer can share them.
package domain
