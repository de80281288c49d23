package insights

// analysisExtras may be appended to a quiet analysis.
var analysisExtras = []Insight{
	{Type: Info, Title: "Transformer Load Analysis", Icon: "🔌",
		Message: "South Mangalore transformer T-204 operating at 87% capacity. Schedule maintenance during low-demand hours."},
	{Type: Info, Title: "Renewable Integration", Icon: "☀️",
		Message: "Solar generation in West Mangalore contributing 23% to local grid. Optimal weather conditions detected."},
	{Type: Warning, Title: "Load Balancing Required", Icon: "⚖️",
		Message: "East Mangalore showing 15% higher load than predicted. Consider load redistribution to adjacent feeders."},
	{Type: Info, Title: "Smart Meter Update", Icon: "📊",
		Message: "1,247 smart meters in North Mangalore updated with latest firmware. Real-time data accuracy improved."},
}

// Operational is the catalog the live feed draws from.
var Operational = []Insight{
	{Type: Critical, Title: "Transformer Overload Warning", Icon: "🔥",
		Message: "Transformer T-204 in South Mangalore operating at 94% capacity. Recommend load redistribution to adjacent feeders within 30 minutes to prevent equipment failure.",
		Action:  "Redistribute load to T-205 and T-206"},
	{Type: Warning, Title: "Peak Demand Forecast", Icon: "📈",
		Message: "Predicted 18% demand surge at 7:30 PM today. Activate demand response protocols and notify industrial consumers to shift non-critical loads.",
		Action:  "Enable DR protocols, contact major consumers"},
	{Type: Info, Title: "Renewable Integration Opportunity", Icon: "☀️",
		Message: "Solar generation in West Mangalore at 87% efficiency. Optimal conditions for battery storage charging. Recommend activating grid-scale storage systems.",
		Action:  "Activate battery storage, optimize solar dispatch"},
	{Type: Success, Title: "Grid Optimization Success", Icon: "✅",
		Message: "Federated learning model achieved 96.2% accuracy. Power loss reduced by 12% compared to last month. System operating at peak efficiency.",
		Action:  "Continue current optimization parameters"},
	{Type: Warning, Title: "Voltage Regulation Alert", Icon: "⚡",
		Message: "Voltage fluctuations detected in East Mangalore (±3.2%). Deploy automatic voltage regulators and check capacitor bank status immediately.",
		Action:  "Deploy AVRs, inspect capacitor banks"},
	{Type: Info, Title: "Predictive Maintenance Due", Icon: "🔧",
		Message: "Circuit breaker CB-156 showing 89% health score. Schedule maintenance within 72 hours to prevent unexpected outages during peak season.",
		Action:  "Schedule CB-156 maintenance, prepare backup"},
	{Type: Critical, Title: "Emergency Load Shedding Required", Icon: "🚨",
		Message: "System frequency dropping to 49.7 Hz. Implement Stage-2 load shedding in non-essential areas. Estimated restoration time: 45 minutes.",
		Action:  "Execute load shedding protocol Stage-2"},
	{Type: Success, Title: "Smart Meter Data Quality", Icon: "📊",
		Message: "99.4% of smart meters reporting accurate data. Real-time analytics improving demand forecasting by 23%. Grid visibility at optimal levels.",
		Action:  "Maintain current data collection protocols"},
	{Type: Warning, Title: "Weather Impact Assessment", Icon: "🌧️",
		Message: "Monsoon forecast indicates 85mm rainfall in next 6 hours. Pre-position emergency crews and activate flood-prone substation protection protocols.",
		Action:  "Deploy emergency teams, activate flood protection"},
	{Type: Info, Title: "Energy Storage Optimization", Icon: "🔋",
		Message: "Battery storage systems at 78% capacity. Optimal discharge window opening at 6 PM. Configure for peak shaving to reduce grid stress.",
		Action:  "Program battery discharge for peak hours"},
	{Type: Warning, Title: "Cybersecurity Scan Alert", Icon: "🛡️",
		Message: "Unusual network activity detected on SCADA system. Recommend immediate security audit and temporary isolation of affected communication nodes.",
		Action:  "Initiate security audit, isolate affected nodes"},
	{Type: Success, Title: "Carbon Emission Reduction", Icon: "🌱",
		Message: "Grid carbon intensity reduced to 0.42 kg CO2/kWh - 15% improvement this quarter. Renewable integration strategies proving highly effective.",
		Action:  "Continue renewable integration expansion"},
	{Type: Info, Title: "Dynamic Pricing Opportunity", Icon: "💰",
		Message: "Low demand period detected (2-5 AM). Implement time-of-use pricing to encourage off-peak consumption and improve load factor by 8%.",
		Action:  "Activate dynamic pricing, notify consumers"},
	{Type: Warning, Title: "Harmonic Distortion Detection", Icon: "📡",
		Message: "Total Harmonic Distortion at 6.2% in industrial zone. Install active filters to protect sensitive equipment and improve power quality.",
		Action:  "Deploy harmonic filters, monitor THD levels"},
	{Type: Critical, Title: "Substation Equipment Failure", Icon: "⚠️",
		Message: "Protection relay R-89 failed self-test. Backup protection active but redundancy compromised. Replace within 4 hours to maintain N-1 security.",
		Action:  "Emergency relay replacement, maintain backup"},
	{Type: Success, Title: "Demand Response Achievement", Icon: "🎯",
		Message: "Industrial consumers reduced load by 2.3 MW during peak hours. Avoided need for expensive peaker plant activation, saving ₹1.2 lakhs.",
		Action:  "Reward participating consumers, expand DR program"},
	{Type: Info, Title: "Grid Modernization Update", Icon: "🏗️",
		Message: "Phase-2 smart grid deployment 67% complete. Advanced metering infrastructure improving outage detection time by 78% in covered areas.",
		Action:  "Continue Phase-2 rollout, monitor performance"},
	{Type: Warning, Title: "Transmission Line Monitoring", Icon: "🌡️",
		Message: "Conductor temperature on Line-34 reaching 85°C. Reduce loading by 15% and inspect for vegetation encroachment or conductor damage.",
		Action:  "Reduce line loading, schedule inspection"},
}
