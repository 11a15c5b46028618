package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/traderefer/settlement/internal/entity"
)

var leadUnlockedTmpl = template.Must(template.New("lead_unlocked").Parse(`
<h2>Lead desbloqueado, {{.BusinessName}}!</h2>
<p>Os dados de contato do seu novo lead:</p>
<ul>
	<li><b>Nome:</b> {{.ConsumerName}}</li>
	<li><b>Telefone:</b> {{.ConsumerPhone}}</li>
	<li><b>Email:</b> {{.ConsumerEmail}}</li>
	{{if .ConsumerAddress}}<li><b>Endereço:</b> {{.ConsumerAddress}}</li>{{end}}
</ul>
<p><b>Serviço:</b> {{.JobDescription}}</p>
<p>Quando sair para o atendimento, marque "a caminho" no painel.</p>
`))

var onTheWayTmpl = template.Must(template.New("on_the_way").Parse(`
<h2>Olá, {{.ConsumerName}}!</h2>
<p><b>{{.BusinessName}}</b> está a caminho do seu serviço.</p>
<p>Quando o trabalho for concluído, informe ao profissional o código de
confirmação que você recebeu ao solicitar o serviço.</p>
`))

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     "nao-responda@traderefer.com",
	}
}

func (s *EmailSender) SendLeadUnlocked(to, businessName string, lead *entity.Lead) error {
	data := leadUnlockedData{
		BusinessName:    businessName,
		ConsumerName:    lead.ConsumerName,
		ConsumerPhone:   lead.ConsumerPhone,
		ConsumerEmail:   lead.ConsumerEmail,
		ConsumerAddress: lead.ConsumerAddress,
		JobDescription:  lead.JobDescription,
	}

	subject := fmt.Sprintf("Novo lead desbloqueado: %s 🔓", lead.ConsumerName)
	return s.send(to, subject, leadUnlockedTmpl, data)
}

func (s *EmailSender) SendOnTheWay(to, consumerName, businessName string) error {
	data := onTheWayData{
		ConsumerName: consumerName,
		BusinessName: businessName,
	}

	subject := fmt.Sprintf("%s está a caminho! 🚐", businessName)
	return s.send(to, subject, onTheWayTmpl, data)
}

func (s *EmailSender) send(to, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
