package narrate

// Question is the text of a prompt. The English text is also its catalog key.
type Question string

const (
	AskAccuse       Question = "Who do you accuse?"
	AskObject       Question = "Object and cancel today's election?"
	AskSecretPhrase Question = "Say your secret phrase to call a second election?"
	AskLynch        Question = "Who should be lynched?"
	AskSpare        Question = "Spare %s from the rope?"
	AskTakeRole     Question = "Take over the role of %s?"
	AskPrisoner     Question = "Choose tonight's prisoner."
	AskShoot        Question = "You are dying. Choose who you shoot."
	AskSuccessor    Question = "Choose who inherits your sheriff badge."
	AskLovers       Question = "Choose two players to fall in love."
	AskSteal        Question = "Choose a player whose role you steal."
	AskSwap         Question = "Choose two players whose roles you swap."
	AskSide         Question = "Choose your side."
	AskRoleModel    Question = "Choose your role model."
	AskExecute      Question = "Execute your prisoner %s?"
	AskProtect      Question = "Choose a player to protect tonight."
	AskDragDown     Question = "Choose who you take with you if you die."
	AskLoudmouth    Question = "Choose whose role is revealed when you die."
	AskVisit        Question = "Choose who you spend the night with."
	AskSeeRole      Question = "Choose a player to see their role."
	AskReadAura     Question = "Choose a player to read their aura."
	AskWatch        Question = "Choose a player to watch tonight."
	AskSniff        Question = "Choose a player to sniff with their neighbours."
	AskRevealToPack Question = "Choose a player to reveal to the pack."
	AskRevive       Question = "Choose a dead player to bring back at dawn."
	AskVictim       Question = "Choose tonight's victim."
	AskCurse        Question = "Curse %s instead of killing them?"
	AskSecondVictim Question = "Choose a second victim."
	AskDevour       Question = "Choose a wolf to devour."
	AskShield       Question = "Choose a teammate to shield."
	AskHeal         Question = "Choose a dying player to save."
	AskPoison       Question = "Choose a player to poison."
	AskEnchant      Question = "Choose up to two players to enchant."
	AskInfect       Question = "Choose a player to infect."

	AnswerYes Question = "Yes"
	AnswerNo  Question = "No"
)

// Ask renders a question, filling in its arguments.
func (n *Narrator) Ask(q Question, args ...interface{}) string {
	return n.p.Sprintf(string(q), args...)
}
