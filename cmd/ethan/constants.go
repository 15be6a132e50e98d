package main

// historyPageLimit bounds how many versions the history commands print.
const historyPageLimit = 10

// localConversationKey is the single conversation a console session uses.
const localConversationKey = "local"
