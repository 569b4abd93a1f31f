package message

import "fmt"

// ChatType identifies one of the game's fixed chat channels.
type ChatType int

const (
	ChatSay ChatType = iota
	ChatYell
	ChatShout
	ChatTellIncoming
	ChatTellOutgoing
	ChatParty
	ChatAlliance
	ChatFreeCompany
	ChatLinkshell1
	ChatLinkshell2
	ChatLinkshell3
	ChatLinkshell4
	ChatLinkshell5
	ChatLinkshell6
	ChatLinkshell7
	ChatLinkshell8
	ChatEmote
	ChatEcho
	ChatNoviceNetwork

	chatTypeCount // must stay last
)

// chatTypeNames maps each type to the name used on the wire and in config.
var chatTypeNames = map[ChatType]string{
	ChatSay:           "say",
	ChatYell:          "yell",
	ChatShout:         "shout",
	ChatTellIncoming:  "tell_in",
	ChatTellOutgoing:  "tell_out",
	ChatParty:         "party",
	ChatAlliance:      "alliance",
	ChatFreeCompany:   "free_company",
	ChatLinkshell1:    "linkshell1",
	ChatLinkshell2:    "linkshell2",
	ChatLinkshell3:    "linkshell3",
	ChatLinkshell4:    "linkshell4",
	ChatLinkshell5:    "linkshell5",
	ChatLinkshell6:    "linkshell6",
	ChatLinkshell7:    "linkshell7",
	ChatLinkshell8:    "linkshell8",
	ChatEmote:         "emote",
	ChatEcho:          "echo",
	ChatNoviceNetwork: "novice",
}

var chatTypesByName = func() map[string]ChatType {
	byName := make(map[string]ChatType, len(chatTypeNames))
	for t, name := range chatTypeNames {
		byName[name] = t
	}
	return byName
}()

// String returns the wire/config name of the chat type.
func (t ChatType) String() string {
	if name, ok := chatTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("chattype(%d)", int(t))
}

// ParseChatType resolves a wire/config name to its chat type.
func ParseChatType(name string) (ChatType, error) {
	t, ok := chatTypesByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown chat type %q", name)
	}
	return t, nil
}

// ChatTypes returns every chat type in declaration order.
func ChatTypes() []ChatType {
	types := make([]ChatType, 0, chatTypeCount)
	for t := ChatType(0); t < chatTypeCount; t++ {
		types = append(types, t)
	}
	return types
}

// DefaultLabels returns the built-in display label per chat type. A label
// left (or overridden to) empty excludes that type from logging entirely.
func DefaultLabels() map[ChatType]string {
	return map[ChatType]string{
		ChatSay:           "say",
		ChatYell:          "yell",
		ChatShout:         "shout",
		ChatTellIncoming:  "tell",
		ChatTellOutgoing:  "tell",
		ChatParty:         "party",
		ChatAlliance:      "alliance",
		ChatFreeCompany:   "fc",
		ChatLinkshell1:    "ls1",
		ChatLinkshell2:    "ls2",
		ChatLinkshell3:    "ls3",
		ChatLinkshell4:    "ls4",
		ChatLinkshell5:    "ls5",
		ChatLinkshell6:    "ls6",
		ChatLinkshell7:    "ls7",
		ChatLinkshell8:    "ls8",
		ChatEmote:         "emote",
		ChatEcho:          "echo",
		ChatNoviceNetwork: "novice",
	}
}
