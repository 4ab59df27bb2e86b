package synth

import (
	"fmt"
	"strings"
)

// Templates returns the built-in layouts in a stable order.
func Templates() []Template {
	return []Template{
		{Name: "profesional", Render: professional},
		{Name: "beneficio_empresarial", Render: businessBenefit},
		{Name: "contexto_regional", Render: regionalContext},
		{Name: "perspectiva_tecnologica", Render: technologyOutlook},
	}
}

func quote(in Input) string {
	if in.Excerpt == "" {
		return ""
	}
	return fmt.Sprintf("<blockquote>%s</blockquote>\n", in.Excerpt)
}

func source(in Input) string {
	if in.Portal == "" {
		return "la prensa especializada"
	}
	return in.Portal
}

func professional(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p><strong>Introducción:</strong> En el contexto del creciente desarrollo de las energías renovables en Argentina, la información difundida por %[2]s abre una nueva oportunidad de análisis sobre %[1]s. Se trata de un tema que merece atención por parte de directivos, responsables de compras y equipos de mantenimiento, porque combina decisiones técnicas con consecuencias económicas de mediano plazo para cualquier organización que consuma energía de manera intensiva.</p>
<p>La información disponible sugiere implicaciones importantes para el mercado argentino de autoconsumo empresarial, en especial si se consideran las regulaciones vigentes, la evolución de las tarifas eléctricas y las tendencias que muestra el sector energético nacional. Las empresas que hasta hace pocos años veían la generación propia como un proyecto lejano hoy la evalúan como una herramienta concreta de gestión de costos y de previsibilidad operativa.</p>
`, in.TitleLower, source(in))
	b.WriteString("<p><strong>Contexto Técnico:</strong> El punto de partida del análisis es el siguiente resumen de la fuente original:</p>\n")
	b.WriteString(quote(in))
	b.WriteString(`<p>A partir de ese dato, conviene separar lo coyuntural de lo estructural. Lo coyuntural tiene que ver con precios de equipos, plazos de importación y condiciones financieras que cambian de un trimestre a otro. Lo estructural, en cambio, se relaciona con la madurez de la tecnología fotovoltaica, la disponibilidad de recurso solar en buena parte del territorio y la existencia de un marco normativo que permite inyectar excedentes a la red de distribución.</p>
<p>Desde la perspectiva de INGLAT y de nuestro enfoque en soluciones de autoconsumo para empresas argentinas, estos desarrollos representan oportunidades concretas de optimización energética y de reducción de costos operativos. La experiencia acumulada en instalaciones comerciales e industriales muestra que un sistema bien dimensionado puede cubrir una parte relevante del consumo diurno, justamente el tramo de mayor demanda en plantas, depósitos y oficinas.</p>
<p><strong>Impacto Regional:</strong> Para el mercado argentino esta información es particularmente relevante dado el marco regulatorio del programa RenovAr y las políticas de generación distribuida que ya adoptaron la mayoría de las provincias. Cada jurisdicción define sus propios procedimientos de conexión, pero la tendencia general es hacia trámites más simples, medidores bidireccionales y esquemas de compensación que reconocen la energía entregada a la red.</p>
<p>Las empresas que consideran implementar sistemas de autoconsumo solar pueden beneficiarse de estas tendencias, sobre todo en términos de retorno de inversión y de eficiencia operativa. Un análisis serio empieza por el relevamiento de las facturas de los últimos doce meses, sigue con el estudio de la superficie disponible en techos o terrenos y termina con una simulación de producción que contemple la orientación, la inclinación y las posibles sombras.</p>
<p>También es importante considerar el mantenimiento. Los módulos fotovoltaicos tienen una vida útil que supera los veinticinco años y los inversores requieren controles periódicos relativamente sencillos. La limpieza de los paneles, la revisión de las conexiones y el monitoreo remoto de la producción permiten detectar desvíos a tiempo y sostener el rendimiento previsto a lo largo de toda la vida del proyecto.</p>
<p>Otro aspecto que suele pasar inadvertido es el valor reputacional. Clientes, inversores y proveedores prestan cada vez más atención a la huella de carbono de las cadenas de valor, y contar con generación renovable propia se convierte en un argumento comercial tangible. Para muchas compañías exportadoras, además, la trazabilidad del origen de la energía empieza a aparecer como requisito en auditorías y licitaciones internacionales.</p>
<p>En términos financieros, la decisión no debería analizarse solo por el costo inicial. La comparación correcta incluye la evolución esperada de la tarifa, el ahorro acumulado durante la vida del sistema, los beneficios impositivos disponibles y el costo de oportunidad del capital. Con esos elementos sobre la mesa, la inversión en energía solar deja de ser un gasto y pasa a ser parte de la estrategia de competitividad de la empresa.</p>
`)
	fmt.Fprintf(&b, `<p><strong>Perspectiva Futura:</strong> La evolución del sector de energías renovables en Latinoamérica, y particularmente en Argentina, continúa presentando oportunidades de crecimiento sostenible y competitivo para el sector empresarial. Seguiremos de cerca las novedades vinculadas a %[1]s para acompañar a las empresas que quieren transformar su consumo energético con información clara y criterios técnicos sólidos.</p>
`, in.TitleLower)
	return b.String()
}

func businessBenefit(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p><strong>Contexto empresarial:</strong> La noticia difundida por %[2]s sobre %[1]s vuelve a poner en primer plano una pregunta que se repite en directorios y gerencias de todo el país: cuánto cuesta realmente la energía que consume una empresa y cuánto de ese costo puede controlarse. En un escenario de tarifas cambiantes, la respuesta ya no depende solo de negociar con la distribuidora, sino de decidir si conviene producir una parte de esa energía en el propio establecimiento.</p>
<p>El sector empresarial argentino muestra señales claras de interés. Industrias medianas, cadenas comerciales, bodegas, frigoríficos y empresas de logística forman parte de un grupo creciente que evalúa o ya opera sistemas de autoconsumo solar. Lo que tienen en común no es el tamaño ni el rubro, sino un perfil de consumo con fuerte demanda durante las horas de sol y la necesidad de previsibilidad en sus costos fijos.</p>
`, in.TitleLower, source(in))
	b.WriteString("<p>La fuente original lo resume de la siguiente manera:</p>\n")
	b.WriteString(quote(in))
	b.WriteString(`<p>Más allá del caso puntual, el dato confirma una tendencia que en INGLAT observamos en cada relevamiento: las oportunidades concretas de autoconsumo solar aparecen cuando se cruzan la superficie disponible, la calidad del recurso solar y un consumo eléctrico estable. Cuando esas tres condiciones se cumplen, los números de la inversión suelen cerrar con holgura.</p>
<p><strong>Beneficios:</strong></p>
<ul>
<li>Reducción de la factura eléctrica desde el primer mes de operación, con ahorros que en instalaciones comerciales bien dimensionadas pueden alcanzar una porción significativa del consumo diurno.</li>
<li>Retorno de inversión medible y previsible, calculado sobre datos reales de consumo y con una vida útil de los equipos que supera ampliamente el período de repago.</li>
<li>Ventaja competitiva frente a empresas del mismo rubro, tanto por menores costos operativos como por la posibilidad de comunicar una política energética sostenible a clientes y socios comerciales.</li>
<li>Cobertura parcial frente a aumentos tarifarios, porque cada kilovatio hora generado en el establecimiento es un kilovatio hora que no se paga al precio de la red.</li>
</ul>
<p>Para aprovechar estos beneficios es clave encarar el proyecto con método. La primera etapa es el diagnóstico energético: revisar las facturas, identificar los picos de demanda y entender qué equipos concentran el consumo. La segunda es el diseño técnico, que define la potencia a instalar, la ubicación de los módulos, el tipo de inversor y la estrategia de conexión a la red. La tercera es la evaluación económica, donde se comparan alternativas de financiamiento y se proyecta el flujo de fondos.</p>
<p>La ejecución de la obra suele ser más breve de lo que muchas empresas imaginan. Una instalación mediana sobre techo puede completarse en pocas semanas, con interrupciones mínimas de la actividad. Lo que demanda más tiempo es la gestión administrativa ante la distribuidora y el organismo provincial, por eso conviene iniciar los trámites en paralelo con la ingeniería de detalle.</p>
<p>Una vez en marcha, el sistema requiere un seguimiento sencillo. Las plataformas de monitoreo permiten ver la producción en tiempo real, compararla con la proyección y recibir alertas ante cualquier anomalía. Esa información es valiosa no solo para el área de mantenimiento, sino también para la gerencia financiera, que puede medir el ahorro efectivo y reportarlo con precisión.</p>
<p>El financiamiento merece un capítulo aparte. Existen líneas bancarias específicas para eficiencia energética, esquemas de leasing para equipamiento y, en algunos casos, beneficios fiscales asociados a la inversión en energías renovables. Combinar estas herramientas permite que el ahorro mensual cubra buena parte de la cuota, lo que reduce el impacto de la inversión sobre la caja de la empresa.</p>
`)
	fmt.Fprintf(&b, `<p><strong>Perspectiva INGLAT:</strong> Como especialistas en autoconsumo solar empresarial, entendemos que cada compañía tiene necesidades distintas. Novedades como la de %[1]s confirman que el camino hacia una matriz energética más limpia y competitiva ya está en marcha, y que las empresas argentinas que se anticipen serán las que obtengan los mayores beneficios.</p>
`, in.TitleLower)
	return b.String()
}

func regionalContext(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p><strong>Panorama regional:</strong> La publicación de %[2]s sobre %[1]s se inscribe en un proceso más amplio que atraviesa a toda América Latina. Brasil, Chile, México y Colombia vienen ampliando su capacidad renovable a un ritmo sostenido, y Argentina, con uno de los mejores recursos solares y eólicos de la región, tiene condiciones para acelerar su propia transición si logra combinar reglas estables con financiamiento accesible.</p>
<p>La comparación con los países vecinos resulta útil para dimensionar oportunidades. Chile consolidó un mercado de generación distribuida con procedimientos claros y tiempos de conexión acotados. Brasil se convirtió en uno de los mayores mercados de autoconsumo del mundo gracias a un esquema de compensación que incentivó a comercios e industrias. México y Colombia, por su parte, muestran cómo la energía solar puede integrarse en parques industriales y zonas francas con contratos de largo plazo.</p>
`, in.TitleLower, source(in))
	b.WriteString("<p>En el caso que motiva esta nota, la fuente destaca lo siguiente:</p>\n")
	b.WriteString(quote(in))
	b.WriteString(`<p>Para Argentina, estas experiencias dejan varias lecciones. La primera es que la generación distribuida crece cuando el usuario entiende con claridad cuánto va a ahorrar y en qué plazo. La segunda es que las distribuidoras tienen un rol central, porque de su agilidad depende que un proyecto se conecte en semanas o en meses. La tercera es que la industria local de servicios, desde la ingeniería hasta el montaje y el mantenimiento, se fortalece cuando hay un flujo constante de obras.</p>
<p><strong>Argentina en foco:</strong> El país cuenta con una ley nacional de generación distribuida y con adhesiones provinciales que, aunque desparejas, cubren la mayor parte del territorio. El programa RenovAr demostró que existe capacidad técnica y apetito inversor para proyectos de gran escala, y esa experiencia empieza a derramar hacia el segmento empresarial, donde las instalaciones son más pequeñas pero mucho más numerosas.</p>
<p>Las regiones del noroeste y de Cuyo presentan niveles de radiación comparables con los mejores del mundo, mientras que la región pampeana y el litoral concentran la mayor parte de la demanda industrial. Esa combinación hace que el autoconsumo solar sea viable en prácticamente todo el país, con diferencias de rendimiento que se compensan con una buena ingeniería y una elección adecuada de equipos.</p>
<p>El contexto macroeconómico agrega desafíos. La volatilidad del tipo de cambio y las condiciones de importación de componentes influyen en el costo final de los proyectos. Sin embargo, la caída sostenida del precio internacional de los módulos y la mayor oferta de inversores y estructuras en el mercado local compensan parcialmente esos factores y mantienen la competitividad de la energía solar frente a la tarifa de red.</p>
<p>Para las empresas argentinas, la clave está en no mirar la coyuntura de manera aislada. Un sistema de autoconsumo se diseña para operar durante décadas, y en ese horizonte la tendencia regional es inequívoca: más energía renovable, redes más inteligentes y usuarios que participan activamente en la generación. Quienes se incorporen temprano tendrán costos más bajos y mayor experiencia en la gestión de su propia energía.</p>
<p>En INGLAT acompañamos ese proceso con un enfoque que combina conocimiento del mercado regional y comprensión de la realidad de cada provincia. Evaluamos el recurso solar del sitio, la normativa aplicable y el perfil de consumo de cada cliente para proponer soluciones que funcionen en el contexto argentino y no solo en una planilla de cálculo.</p>
`)
	fmt.Fprintf(&b, `<p><strong>Perspectiva regional:</strong> Lo ocurrido con %[1]s muestra que Latinoamérica avanza hacia una matriz más diversificada y limpia. Argentina tiene los recursos y el conocimiento para ocupar un lugar destacado en ese camino, y el autoconsumo empresarial será uno de sus motores principales durante los próximos años.</p>
`, in.TitleLower)
	return b.String()
}

func technologyOutlook(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p><strong>Innovación en foco:</strong> La información publicada por %[2]s acerca de %[1]s permite repasar el momento que atraviesa la tecnología de generación renovable. En pocos años, los módulos fotovoltaicos ganaron eficiencia, los inversores incorporaron funciones de gestión avanzada y las plataformas de monitoreo pasaron de ser un accesorio a convertirse en el centro de la operación de cualquier instalación.</p>
<p>Este avance tecnológico tiene un efecto directo sobre las empresas. Más eficiencia por metro cuadrado significa que un mismo techo puede alojar más potencia, algo decisivo en establecimientos urbanos con superficie limitada. A la vez, equipos más confiables reducen los costos de mantenimiento y aumentan la disponibilidad del sistema durante toda su vida útil.</p>
`, in.TitleLower, source(in))
	b.WriteString("<p>Según la fuente original:</p>\n")
	b.WriteString(quote(in))
	b.WriteString(`<p><strong>Tendencias tecnológicas:</strong> Entre los desarrollos que hoy marcan la diferencia en proyectos comerciales e industriales se destacan los siguientes.</p>
<ul>
<li>Módulos bifaciales y de celdas de alta eficiencia, que aprovechan la radiación reflejada y mejoran el rendimiento en superficies claras o estructuras elevadas.</li>
<li>Inversores con funciones de gestión de red, capaces de regular la potencia inyectada y de responder a las exigencias técnicas de las distribuidoras.</li>
<li>Sistemas de almacenamiento con baterías de litio, que permiten trasladar energía a las horas de mayor costo o garantizar respaldo ante cortes.</li>
<li>Plataformas de monitoreo con análisis de datos, que comparan la producción real con la esperada y anticipan fallas antes de que afecten el ahorro.</li>
</ul>
<p>La incorporación de estas tecnologías no requiere que la empresa se convierta en especialista. Lo importante es contar con un diseño que elija la combinación adecuada para cada caso. Un depósito logístico con gran superficie de techo y consumo diurno constante no necesita lo mismo que una planta con procesos nocturnos o que un comercio con picos de demanda en horarios específicos.</p>
<p>La digitalización también cambia la forma de gestionar la energía. Con medición detallada es posible identificar consumos innecesarios, programar cargas en los momentos de mayor producción solar y negociar mejor las condiciones de suministro. La instalación fotovoltaica se transforma así en el punto de partida de una gestión energética integral, y no solo en una fuente de ahorro aislada.</p>
<p>En el mercado argentino, la oferta de equipamiento se amplió de manera notable. Hoy es posible acceder a marcas con respaldo internacional, servicio técnico local y garantías de largo plazo. Esa madurez del mercado reduce los riesgos para el inversor y facilita la elección, siempre que se prioricen la calidad certificada y la experiencia del instalador por sobre el precio inicial más bajo.</p>
<p>Para las empresas que planifican su inversión, la recomendación es pensar en etapas. Un primer sistema dimensionado para el consumo base puede ampliarse más adelante con nuevos módulos o con almacenamiento, a medida que la tecnología abarata sus costos y que la empresa gana experiencia en la operación. Diseñar desde el inicio pensando en esa escalabilidad evita reformas costosas en el futuro.</p>
`)
	fmt.Fprintf(&b, `<p><strong>Perspectiva tecnológica:</strong> Novedades como %[1]s confirman que la innovación en energías renovables avanza rápido y que sus beneficios ya están al alcance de las empresas argentinas. En INGLAT seguimos estos desarrollos para incorporar en cada proyecto la tecnología que mejor se adapta a las necesidades de nuestros clientes.</p>
`, in.TitleLower)
	return b.String()
}
