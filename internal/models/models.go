package models

// Relational returns every GORM model, in migration order
func Relational() []interface{} {
	return []interface{}{
		&User{},
		&UserSettings{},
		&Follow{},
		&Block{},
		&Event{},
		&Support{},
		&Pass{},
		&Squad{},
		&SquadMember{},
		&Post{},
		&Like{},
		&PostParticipant{},
		&SquadReaction{},
		&Comment{},
		&CommentLike{},
		&CommentAward{},
		&Bookmark{},
		&Donation{},
		&Notification{},
	}
}
