package chat

import (
	domain "idea2app/internal/chat"
)

// Store is the message log used by the chat service.
type Store = domain.Store
