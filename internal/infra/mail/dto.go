package mail

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type leadUnlockedData struct {
	BusinessName    string
	ConsumerName    string
	ConsumerPhone   string
	ConsumerEmail   string
	ConsumerAddress string
	JobDescription  string
}

type onTheWayData struct {
	ConsumerName string
	BusinessName string
}
