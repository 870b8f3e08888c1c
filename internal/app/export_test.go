package app

// NewSessionWithCoins starts a session with a custom balance.
var NewSessionWithCoins = newSessionWithCoins
