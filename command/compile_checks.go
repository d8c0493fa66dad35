package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[AfterTestClassMessage]    = (*AfterTestClassCommand)(nil)
	_ gocmd.Commander[SendEnvelopeMessage]      = (*SendEnvelopeCommand)(nil)
	_ gocmd.Commander[InvalidateContextMessage] = (*InvalidateContextCommand)(nil)
)
