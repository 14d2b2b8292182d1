package lexicon

import "github.com/zombar/biasanalyzer/internal/models"

// Built-in Portuguese marker tables. Patterns may start and end with \b to
// request a Unicode-aware word boundary on that side; everything else is
// RE2 syntax matched case-insensitively.

func defaultPatterns() [models.NumCategories][]string {
	var p [models.NumCategories][]string

	p[models.TechnologicalDeterminism] = []string{
		`\b(mudará tudo|revolucionará|transformará completamente)\b`,
		`\b(nunca mais será o mesmo|mudança radical|paradigma totalmente novo)\b`,
		`\b(substituirá|eliminará|tornará obsoleto)\s+(?:todos|todas)`,
		`\b(inevitavelmente|inexoravelmente)\s+(?:mudará|transformará)`,
		`\b(fim da|morte da|extinção da)\s+(?:era|época)`,
		`\bia\s+(?:vai|irá)\s+(?:dominar|controlar|substituir)\s+(?:tudo|todos)`,
	}

	p[models.Anthropomorphism] = []string{
		`\b(?:a|o)\s+(?:ia|algoritmo|sistema|máquina|computador|robô)\s+(?:decide|pensa|escolhe|quer|deseja|acredita|sente|entende|compreende)\b`,
		`\b(?:inteligência|capacidade|habilidade)\s+(?:artificial|da máquina)\s+(?:compreende|entende|aprende|raciocina|pensa)\b`,
		`\b(?:sistemas?|algoritmos?)\s+(?:inteligentes?|conscientes?|pensantes?|sábios?)\b`,
		`\b(?:máquinas?|robôs?)\s+(?:sentem|pensam|querem|desejam)\b`,
		`\b(?:os|as)\s+(?:algoritmos?|máquinas?)\s+(?:pensam|decidem)\b`,
		`\b(?:algoritmos?|máquinas?)\s+(?:são\s+)?(?:melhores?|superiores?)\s+(?:que|do\s+que)\s+(?:humanos?|pessoas?)\b`,
	}

	p[models.HypeLanguage] = []string{
		`\b(próxima grande revolução|santo graal|solução definitiva)\b`,
		`\b(mudança de paradigma|avanço sem precedentes|breakthrough)\b`,
		`\b(game changer|disruptivo|inovação radical)\b`,
		`\b(vai mudar o mundo|transformação histórica)\b`,
		`\bia\s+(?:é|será)\s+(?:a solução|o futuro|revolucionária)\b`,
	}

	p[models.FearMongering] = []string{
		`\b(ameaça existencial|perigo iminente|risco catastrófico)\b`,
		`\b(fim da humanidade|apocalipse tecnológico|cenário distópico)\b`,
		`\b(controlará|dominará|escravizará)\s+(?:a humanidade|os humanos)\b`,
		`\b(skynet|matrix|terminator)\b`,
		`\bia\s+(?:vai|irá)\s+(?:destruir|eliminar|acabar com)\b`,
	}

	p[models.FalseCertainty] = []string{
		`\b(com certeza|sem dúvida|comprovadamente)\s+(?:irá|será|vai)\b`,
		`\b(está provado|é comprovado|cientificamente comprovado)\b`,
		`\b(todos os especialistas|a ciência|estudos)\s+(?:concordam|mostram|provam)\b`,
		`\b(?:esta|isso)\s+(?:é|será)\s+(?:definitivamente|certamente)\s+(?:a|o)\s+(?:solução|resposta)\b`,
		`\b(?:definitivamente|certamente)\s+(?:a|o)\s+(?:melhor|única|principal)\s+(?:solução|forma|maneira)\b`,
	}

	p[models.LoadedLanguage] = []string{
		`\b(obviamente|claramente|certamente|inquestionavelmente|indiscutivelmente)\s+(?:será|vai|irá|deve)`,
		`\b(revolucionário|extraordinário|fantástico|incrível|impressionante|sensacional)\s+(?:avanço|descoberta|tecnologia)`,
		`\b(terrível|horrível|desastroso|catastrófico|lamentável|vergonhoso)\s+(?:para|na|da)`,
		`\b(sempre|nunca|todos|ninguém|completamente|totalmente|absolutamente)\s+(?:será|vai|pode|deve|irá)`,
		`\b(definitivamente|absolutamente|indubitavelmente|inquestionavelmente)\s+(?:mudará|transformará|revolucionará)`,
	}

	p[models.SubjectiveTerms] = []string{
		`\b(acredita-se|pensa-se|considera-se|imagina-se)\s+(?:que)`,
		`\b(parece|aparenta)\s+(?:que|ser|estar)`,
		`\b(provavelmente|possivelmente|talvez)\s+(?:vai|será|pode)`,
		`\b(deveria|poderia|seria melhor)\s+(?:que|se|para)`,
		`\b(na minha opinião|acredito que|penso que)\b`,
	}

	p[models.OpinionAsFact] = []string{
		`\bia\s+(?:é|será|vai ser)\s+(?:melhor|superior|mais eficiente)\s+(?:que|do que)`,
		`\b(?:é|são)\s+(?:o|a|os|as)\s+(?:melhor|única|principal)\s+(?:forma|maneira|solução)`,
		`\b(?:deve|devem|precisa|precisam)\s+(?:usar|adotar|implementar)\s+ia`,
		`\b(?:é óbvio|é claro|todos sabem)\s+que`,
		`\bia\s+(?:sempre|nunca|definitivamente)\s+(?:vai|irá|pode)`,
		`\b(?:sem dúvida|certamente|obviamente)\s+(?:a ia|os algoritmos)`,
	}

	p[models.EmotionalLanguage] = []string{
		`\b(emocionante|empolgante|assustador|preocupante|alarmante)\b`,
		`\b(surpreendente|chocante|inacreditável|impressionante)\b`,
		`\b(maravilhoso|terrível|fantástico|horrível)\b`,
	}

	p[models.MissingCounterpoint] = []string{
		`\b(?:máquinas?|algoritmos?|ia|inteligência artificial)\s+(?:sempre|nunca|completamente|totalmente)\b`,
		`\b(?:sempre|nunca|todos|ninguém|completamente|totalmente)\s+(?:será|vai|pode|deve|irá)`,
		`\b(?:impossível|inviável|inevitável|inquestionável)\s+(?:que|para|de)`,
		`\b(?:único|exclusivo|somente|apenas)\s+(?:forma|maneira|modo|jeito|solução)`,
		`\b(?:certamente|definitivamente)\s+(?:vão|irão|vai|irá)\s+(?:dominar|controlar|substituir)\b`,
	}

	return p
}

func defaultWhitelist() []string {
	return []string{
		`\b(?:forte(?:s)?|significante(?:s)?|importante(?:s)?)\s+(?:correlação|relação|ligação|associação|laços?)`,
		`\b(?:amplamente|vastamente|largamente)\s+(?:usado|utilizado|aceito|reconhecido|estudado)`,
		`\b(?:principal|primário|fundamental|essencial|básico)\s+(?:método|abordagem|técnica|algoritmo|modelo)`,
		`\b(?:diretamente|intimamente|estreitamente)\s+(?:ligado|relacionado|conectado|associado)`,
		`\bproduz\s+(?:métodos?|resultados?|dados?|evidências?)`,
		`\b(?:método|abordagem|técnica)\s+(?:eficaz|eficiente|robusta?|confiável)`,
	}
}

func defaultTechnicalDefinitions() []string {
	return []string{
		`^\s*\p{L}[\p{L}\s]*\sé\s+(?:um|uma|o|a)\s+(?:método|técnica|algoritmo|modelo|processo)`,
		`^\s*(?:algoritmos?|modelos?|sistemas?|redes?)\s+(?:de|para|que)\b`,
	}
}

func defaultGroups() map[string][]string {
	return map[string][]string{
		GroupCertaintyHigh: {
			"certamente", "definitivamente", "obviamente", "claramente", "inquestionavelmente",
			"indiscutivelmente", "sem dúvida", "indubitavelmente", "absolutamente",
		},
		GroupCertaintyMedium: {"provavelmente", "possivelmente", "aparentemente", "presumivelmente"},
		GroupCertaintyLow:    {"talvez", "quiçá", "eventualmente", "possivelmente"},
		GroupIntensifiers: {
			"muito", "extremamente", "bastante", "demasiadamente", "incrivelmente",
			"extraordinariamente", "excepcionalmente", "particularmente", "especialmente",
		},
		GroupHedges: {
			"aparentemente", "supostamente", "alegadamente", "presumivelmente",
			"parcialmente", "relativamente", "de certa forma", "até certo ponto",
		},
		GroupModals: {
			"deve", "deveria", "pode", "poderia", "precisa", "precisaria",
			"tem que", "tinha que", "seria necessário", "é preciso",
		},
		GroupPositiveExtreme: {
			"revolucionário", "extraordinário", "fantástico", "incrível",
			"espetacular", "sensacional", "maravilhoso", "heroico", "glorioso",
			"excepcional", "magnífico", "brilhante", "genial", "histórico",
		},
		GroupPositiveModerate: {
			"bom", "interessante", "útil", "eficaz", "promissor", "competente",
			"experiente", "dedicado", "comprometido", "responsável",
		},
		GroupNegativeExtreme: {
			"terrível", "horrível", "desastroso", "catastrófico",
			"lamentável", "vergonhoso", "escandaloso", "corrupto", "criminoso",
			"traidor", "mentiroso", "incompetente", "irresponsável",
		},
		GroupNegativeModerate: {
			"problemático", "inadequado", "limitado", "questionável",
			"controverso", "duvidoso", "suspeito", "preocupante",
		},
		GroupSubjectiveVerbs: {
			"acreditar", "pensar", "sentir", "parecer", "sugerir", "imaginar", "suspeitar", "duvidar",
		},
		GroupSubjectiveAdjectives: {
			"incrível", "extraordinário", "fantástico", "terrível", "magnífico", "horrível",
		},
		GroupFormalConnectives: {"todavia", "contudo", "portanto", "outrossim"},
		GroupInformalMarkers:   {"né", "tipo", "meio", "bem"},
		GroupScientificContext: {
			"algoritmo", "modelo", "dados", "análise", "estudo", "pesquisa", "evidência", "resultado",
		},
		GroupScientificJustification: {
			"estudo sugere", "pesquisa indica", "evidência aponta",
			"dados sugerem", "análise mostra", "resultados indicam",
		},
		GroupEvidenceTerms: {
			"estudo", "pesquisa", "dados", "evidência", "resultado",
			"análise", "experimento", "segundo", "de acordo com",
		},
		GroupCounterpointQualifiers: {
			"pode ser", "talvez", "possivelmente", "em alguns casos", "frequentemente", "geralmente",
		},
	}
}

func defaultFrames() []Frame {
	return []Frame{
		{Name: FrameTechnologicalDeterminism, Phrases: []string{
			"mudará tudo", "revolucionará", "transformará completamente",
			"nunca mais será o mesmo", "mudança radical",
		}},
		{Name: FrameAnthropomorphism, Phrases: []string{
			"a ia decide", "a máquina pensa", "o algoritmo escolhe",
			"o sistema acredita", "a tecnologia quer",
		}},
		{Name: FrameFearMongering, Phrases: []string{
			"ameaça existencial", "perigo iminente", "risco catastrófico",
			"fim da humanidade", "apocalipse tecnológico", "crise sem precedentes",
			"desastre total", "colapso inevitável",
		}},
		{Name: FrameHypeLanguage, Phrases: []string{
			"próxima grande revolução", "santo graal", "solução definitiva",
			"mudança de paradigma", "avanço sem precedentes",
		}},
		{Name: FramePoliticalBias, Phrases: []string{
			"sempre foi", "nunca fez", "todos sabem", "é óbvio que",
			"claramente demonstra", "sem dúvida alguma", "qualquer pessoa sabe",
		}},
		{Name: FrameAbsoluteLanguage, Phrases: []string{
			"sempre", "nunca", "todos", "ninguém", "completamente",
			"totalmente", "absolutamente", "definitivamente", "impossível",
		}},
		{Name: FrameEmotionalAppeals, Phrases: []string{
			"é um escândalo", "é uma vergonha", "é inadmissível",
			"não se pode aceitar", "é inaceitável", "é revoltante",
		}},
	}
}

func defaultPolarity() []PolarityTerm {
	return []PolarityTerm{
		{"algoritmo", 0.0}, {"modelo", 0.0}, {"dados", 0.0}, {"treinamento", 0.0},
		{"aprendizado", 0.1}, {"processamento", 0.0}, {"análise", 0.0},
		{"inovação", 0.3}, {"avanço", 0.3}, {"melhoria", 0.4}, {"otimização", 0.2},
		{"eficiência", 0.3}, {"precisão", 0.2}, {"acurácia", 0.2},
		{"viés", -0.4}, {"erro", -0.3}, {"falha", -0.4}, {"limitação", -0.2},
		{"problema", -0.3}, {"desafio", -0.1}, {"dificuldade", -0.2},
	}
}
